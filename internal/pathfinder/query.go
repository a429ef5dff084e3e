package pathfinder

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf16"
)

// QueryPath is the persisted-query endpoint relative to the partner base URL.
const QueryPath = "pathfinder/v1/query"

// Operation is a persisted query registered on the partner API.
type Operation struct {
	Name string
	Hash string
}

var (
	FetchPlaylist     = Operation{Name: "fetchPlaylist", Hash: "19ff1327c29e99c208c86d7a9d8f1929cfdf3d3202a0ff4253c821f1901aa94d"}
	ProfileAttributes = Operation{Name: "profileAttributes", Hash: "53bcb064f6cd18c23f752bc324a791194d20df612d8e1239c735144ab0399ced"}
	AccountAttributes = Operation{Name: "accountAttributes", Hash: "4fbd57be3c6ec2157adcc5b8573ec571f61412de23bbb798d8f6a156b7d34cdf"}
)

// Var is one key of an insertion-ordered JSON object.
type Var struct {
	Key   string
	Value any
}

// Vars is an insertion-ordered JSON object.
type Vars []Var

// PlaylistVars returns the fetchPlaylist variables for one page.
func PlaylistVars(playlistID string, offset, limit int) Vars {
	return Vars{
		{Key: "uri", Value: "spotify:playlist:" + playlistID},
		{Key: "offset", Value: offset},
		{Key: "limit", Value: limit},
	}
}

// Extensions returns the persistedQuery block for the operation.
func (op Operation) Extensions() Vars {
	return Vars{{Key: "persistedQuery", Value: Vars{
		{Key: "version", Value: 1},
		{Key: "sha256Hash", Value: op.Hash},
	}}}
}

// Encode renders the query string with operationName, variables and extensions in that order.
//
// The server validates the encoded form, so parameter order and JSON spacing are fixed.
func (op Operation) Encode(vars Vars) (string, error) {
	variables, err := vars.JSON()
	if err != nil {
		return "", err
	}
	extensions, err := op.Extensions().JSON()
	if err != nil {
		return "", err
	}

	return "operationName=" + url.QueryEscape(op.Name) +
		"&variables=" + url.QueryEscape(variables) +
		"&extensions=" + url.QueryEscape(extensions), nil
}

// JSON encodes the object with ", " and ": " separators and ASCII-only output.
func (v Vars) JSON() (string, error) {
	var b strings.Builder
	if err := writeJSON(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeJSON(b *strings.Builder, value any) error {
	switch v := value.(type) {
	case nil:
		b.WriteString("null")
	case Vars:
		b.WriteByte('{')
		for i, kv := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeString(b, kv.Key)
			b.WriteString(": ")
			if err := writeJSON(b, kv.Value); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeJSON(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case string:
		writeString(b, v)
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case int:
		b.WriteString(strconv.Itoa(v))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	default:
		return fmt.Errorf("unsupported query variable type %T", value)
	}
	return nil
}

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r < 0x20 || (r >= 0x7f && r <= 0xffff):
				fmt.Fprintf(b, `\u%04x`, r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(b, `\u%04x\u%04x`, hi, lo)
			default:
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}
