package network

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/pulsar/internal/pageid"
)

// Format identifies a network file encoding.
type Format string

// Supported network file formats.
const (
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
	FormatJSON Format = "json"
)

// tomlFile is the TOML layout:
//
//	[[page]]
//	name = "home"
//	content = "..."
//	links = ["about"]
type tomlFile struct {
	Pages []tomlPage `toml:"page"`
}

type tomlPage struct {
	Name    string   `toml:"name"`
	Content string   `toml:"content"`
	Links   []string `toml:"links"`
}

// hclFile is the HCL layout, also used for HCL's JSON syntax:
//
//	page "home" {
//	  content = "..."
//	  links   = ["about"]
//	}
type hclFile struct {
	Pages []hclPage `hcl:"page,block"`
}

type hclPage struct {
	Name    string   `hcl:"name,label"`
	Content string   `hcl:"content,optional"`
	Links   []string `hcl:"links,optional"`
}

// FormatFor infers the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".hcl":
		return FormatHCL, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads and parses a network file, choosing the decoder from the file
// extension.
func Load(path string, gen pageid.Generator) (*Network, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("network: reading %s: %w", path, err)
	}
	n, err := Parse(data, path, format, gen)
	if err != nil {
		return nil, err
	}
	n.source = path
	return n, nil
}

// Parse decodes network data in the given format. filename is used only in
// diagnostics. A page declared without content hashes its name.
func Parse(data []byte, filename string, format Format, gen pageid.Generator) (*Network, error) {
	var pages []Page
	switch format {
	case FormatTOML:
		var f tomlFile
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("network: parsing %s: %w", filename, err)
		}
		for _, p := range f.Pages {
			pages = append(pages, Page{Name: p.Name, Content: p.Content, Links: p.Links})
		}
	case FormatHCL, FormatJSON:
		parsed, err := parseHCL(data, filename, format)
		if err != nil {
			return nil, err
		}
		pages = parsed
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return New(gen, pages...)
}

func parseHCL(data []byte, filename string, format Format) ([]Page, error) {
	parser := hclparse.NewParser()
	var (
		file  *hcl.File
		diags hcl.Diagnostics
	)
	if format == FormatJSON {
		file, diags = parser.ParseJSON(data, filename)
	} else {
		file, diags = parser.ParseHCL(data, filename)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("network: parsing %s: %w", filename, diags)
	}

	var f hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("network: decoding %s: %w", filename, diags)
	}

	pages := make([]Page, 0, len(f.Pages))
	for _, p := range f.Pages {
		pages = append(pages, Page{Name: p.Name, Content: p.Content, Links: p.Links})
	}
	return pages, nil
}
