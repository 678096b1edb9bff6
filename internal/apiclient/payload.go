package apiclient

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Field struct {
	Name  string
	Value any
}

func (f Field) String() string {
	switch v := f.Value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(f.Value)
}

type File struct {
	Field    string
	Filename string
	Content  []byte
}

// Payload is a write body. It goes out as multipart/form-data when it
// carries files and as a JSON object otherwise.
type Payload struct {
	Fields []Field
	Files  []File
}

func (p *Payload) Set(name string, value any) *Payload {
	for i := range p.Fields {
		if p.Fields[i].Name == name {
			p.Fields[i].Value = value
			return p
		}
	}
	p.Fields = append(p.Fields, Field{Name: name, Value: value})
	return p
}

func (p *Payload) Attach(field, filename string, content []byte) *Payload {
	p.Files = append(p.Files, File{Field: field, Filename: filename, Content: content})
	return p
}

func (p *Payload) Multipart() bool { return len(p.Files) > 0 }

// Get returns the value of a field, nil when absent.
func (p *Payload) Get(name string) any {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

func (p *Payload) Object() map[string]any {
	out := make(map[string]any, len(p.Fields))
	for _, f := range p.Fields {
		out[f.Name] = f.Value
	}
	return out
}

func (p *Payload) formFiles() []*fiber.FormFile {
	out := make([]*fiber.FormFile, 0, len(p.Files))
	for _, f := range p.Files {
		out = append(out, &fiber.FormFile{Fieldname: f.Field, Name: f.Filename, Content: f.Content})
	}
	return out
}
