package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Ident represents an identifier or keyword; keywords are not distinguished.
	Ident
	// Number represents a numeric literal.
	Number
	// String represents a string literal of any quoting style.
	String
	// Char represents a character literal.
	Char
	// Punct represents an operator or punctuation byte sequence.
	Punct
)

var kindNames = [...]string{
	Invalid: "Invalid",
	EOF:     "EOF",
	Ident:   "Ident",
	Number:  "Number",
	String:  "String",
	Char:    "Char",
	Punct:   "Punct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}
