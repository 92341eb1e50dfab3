package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"memarea/core/ui"
)

// area renders a decimal as a bare number in JSON and YAML
type area decimal.Decimal

func (a area) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

func (a area) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: decimal.Decimal(a).String()}, nil
}

type entryDoc struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Count    int    `json:"count" yaml:"count"`
	Location string `json:"location" yaml:"location"`
	Area     area   `json:"area" yaml:"area"`
}

type reportDoc struct {
	Configuration string     `json:"configuration" yaml:"configuration"`
	TotalArea     area       `json:"total_area" yaml:"total_area"`
	Entries       []entryDoc `json:"entries" yaml:"entries"`
}

type resultDoc struct {
	RunID   string      `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Reports []reportDoc `json:"reports" yaml:"reports"`
}

func toDoc(result *Result) resultDoc {
	doc := resultDoc{RunID: result.RunID, Reports: make([]reportDoc, 0, len(result.Reports))}
	for _, r := range result.Reports {
		rd := reportDoc{
			Configuration: r.Configuration,
			TotalArea:     area(r.Total()),
			Entries:       make([]entryDoc, 0, len(r.Entries)),
		}
		for _, e := range r.Entries {
			rd.Entries = append(rd.Entries, entryDoc{
				Name:     e.Name,
				Type:     e.Kind.String(),
				Count:    e.Count,
				Location: string(e.Location),
				Area:     area(e.Area),
			})
		}
		doc.Reports = append(doc.Reports, rd)
	}
	return doc
}

// TextFormatter renders a breakdown table per configuration:
//
//	Configuration: small
//	Name │ Type │ Count │ Location │ Area (μm²)
//	...
//	Total area: 16.0 μm²
type TextFormatter struct{}

func (TextFormatter) Format() Format { return FormatText }

func (TextFormatter) Render(w io.Writer, result *Result) error {
	uw := ui.NewWriter(w, true)
	for i, r := range result.Reports {
		if i > 0 {
			uw.Println("")
		}
		uw.Println("Configuration: %s", r.Configuration)
		uw.Println("Area breakdown:")

		tbl := uw.NewTable("Name", "Type", "Count", "Location", "Area (μm²)")
		tbl.SetAlign(2, ui.AlignRight).SetAlign(4, ui.AlignRight)
		for _, e := range r.Entries {
			tbl.AddRow(e.Name, e.Kind.String(), strconv.Itoa(e.Count), string(e.Location), formatArea(e.Area))
		}
		tbl.Render()

		uw.Println("Total area: %s μm²", formatArea(r.Total()))
	}
	return nil
}

// formatArea prints at least one and at most four decimal places
func formatArea(a decimal.Decimal) string {
	s := a.Round(4).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// CSVFormatter renders one row per report entry
type CSVFormatter struct{}

func (CSVFormatter) Format() Format { return FormatCSV }

func (CSVFormatter) Render(w io.Writer, result *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Configuration", "Name", "Type", "Count", "Location", "Area (μm2)"}); err != nil {
		return err
	}
	for _, r := range result.Reports {
		for _, e := range r.Entries {
			record := []string{r.Configuration, e.Name, e.Kind.String(), strconv.Itoa(e.Count), string(e.Location), e.Area.String()}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormatter renders indented JSON
type JSONFormatter struct{}

func (JSONFormatter) Format() Format { return FormatJSON }

func (JSONFormatter) Render(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toDoc(result))
}

// YAMLFormatter renders YAML
type YAMLFormatter struct{}

func (YAMLFormatter) Format() Format { return FormatYAML }

func (YAMLFormatter) Render(w io.Writer, result *Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDoc(result)); err != nil {
		return err
	}
	return enc.Close()
}

// AreaFormatter prints "configuration<TAB>total area" per report
type AreaFormatter struct{}

func (AreaFormatter) Format() Format { return FormatArea }

func (AreaFormatter) Render(w io.Writer, result *Result) error {
	for _, r := range result.Reports {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", r.Configuration, r.Total().String()); err != nil {
			return err
		}
	}
	return nil
}
