package parser

import "io"

// Parser decodes a payload produced by an external tool or service into T.
type Parser[T any] interface {
	Parse(body io.Reader) (T, error)
}
