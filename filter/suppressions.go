package filter

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.uber.org/multierr"

	"github.com/jward/checkwalk/check"
)

// Suppression suppresses violations matching entries of a suppressions
// file:
//
//	<suppressions>
//	  <suppress files="Generated\.java" checks="LineLength" lines="1-20"/>
//	  <suppress-xpath checks="NestedIfDepth" query="//METHOD_DEF[./IDENT[@text='legacy']]//LITERAL_IF"/>
//	</suppressions>
//
// Lines and columns take comma-separated values and a-b ranges. A
// <suppress> must name checks, message or id.
type Suppression struct {
	File     string `mapstructure:"file"`
	Optional bool   `mapstructure:"optional"`

	elems []*element
	ids   []string
}

type suppressionsDoc struct {
	XMLName xml.Name        `xml:"suppressions"`
	Plain   []suppressEntry `xml:"suppress"`
	Xpath   []suppressEntry `xml:"suppress-xpath"`
}

type suppressEntry struct {
	Files   string `xml:"files,attr"`
	Checks  string `xml:"checks,attr"`
	Message string `xml:"message,attr"`
	ID      string `xml:"id,attr"`
	Lines   string `xml:"lines,attr"`
	Columns string `xml:"columns,attr"`
	Query   string `xml:"query,attr"`
}

func (s *Suppression) Init() error {
	if s.File == "" {
		return errors.New("file is required")
	}
	fh, err := os.Open(s.File)
	if err != nil {
		if s.Optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open suppressions: %w", err)
	}
	defer fh.Close()
	return s.load(fh)
}

func (s *Suppression) load(r io.Reader) error {
	var doc suppressionsDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("parse suppressions %s: %w", s.File, err)
	}

	var errs error
	for i, e := range doc.Plain {
		if e.Checks == "" && e.Message == "" && e.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("suppress[%d]: checks, message or id is required", i))
			continue
		}
		if e.Query != "" {
			errs = multierr.Append(errs, fmt.Errorf("suppress[%d]: query belongs on suppress-xpath", i))
			continue
		}
		errs = multierr.Append(errs, s.add(fmt.Sprintf("suppress[%d]", i), e))
	}
	for i, e := range doc.Xpath {
		if e.Lines != "" || e.Columns != "" {
			errs = multierr.Append(errs, fmt.Errorf("suppress-xpath[%d]: lines and columns belong on suppress", i))
			continue
		}
		errs = multierr.Append(errs, s.add(fmt.Sprintf("suppress-xpath[%d]", i), e))
	}
	return errs
}

func (s *Suppression) add(where string, e suppressEntry) error {
	elem, err := elementSpec(e).compile()
	if err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	s.elems = append(s.elems, elem)
	if e.ID != "" {
		s.ids = append(s.ids, e.ID)
	}
	return nil
}

func (s *Suppression) ReferencedIDs() []string { return s.ids }

// Len returns the number of loaded entries.
func (s *Suppression) Len() int { return len(s.elems) }

func (s *Suppression) Decide(v check.Violation, f *check.File) Decision {
	for _, e := range s.elems {
		if e.matches(v, f) {
			return Reject
		}
	}
	return Neutral
}
