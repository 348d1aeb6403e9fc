package converter

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/jsonkit/internal/models"
)

// xmlHeader precedes every XML document.
const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

// KeyCase selects how object keys become XML element names.
type KeyCase string

const (
	KeyCasePreserve KeyCase = "preserve"
	KeyCaseSnake    KeyCase = "snake"
	KeyCaseCamel    KeyCase = "camel"
	KeyCaseKebab    KeyCase = "kebab"
)

// toXML renders v as nested elements under the configured root name.
// Array items become sibling elements suffixed with their index
// (name_0, name_1, ...). Text content is written verbatim unless XMLEscape
// is set.
func (c *Converter) toXML(v models.Value) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteByte('\n')
	c.writeXML(&b, c.elementName(c.opts.RootName), v)
	return b.String()
}

func (c *Converter) writeXML(b *strings.Builder, name string, v models.Value) {
	switch v.Kind {
	case models.KindArray:
		for i, item := range v.Items {
			c.writeXML(b, name+"_"+strconv.Itoa(i), item)
		}
	case models.KindObject:
		b.WriteString("<" + name + ">")
		for _, m := range v.Members {
			c.writeXML(b, c.elementName(m.Key), m.Value)
		}
		b.WriteString("</" + name + ">")
	default:
		b.WriteString("<" + name + ">")
		b.WriteString(c.xmlText(v))
		b.WriteString("</" + name + ">")
	}
}

func (c *Converter) xmlText(v models.Value) string {
	var text string
	switch v.Kind {
	case models.KindNull:
		return ""
	case models.KindString:
		text = v.Str
	default:
		text = v.String()
	}
	if !c.opts.XMLEscape {
		return text
	}
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(text)) // writes to a bytes.Buffer never fail
	return buf.String()
}

func (c *Converter) elementName(key string) string {
	switch c.opts.XMLKeyCase {
	case KeyCaseSnake:
		return strcase.ToSnake(key)
	case KeyCaseCamel:
		return strcase.ToLowerCamel(key)
	case KeyCaseKebab:
		return strcase.ToKebab(key)
	default:
		return key
	}
}
