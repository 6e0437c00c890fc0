// Package hmdb reads HMDB metabolite exports and converts them to the
// metabolite documents stored by metabo-ui.
package hmdb

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/metabo-ui/metabo-ui/database/model"

	"github.com/goccy/go-json"
)

// ErrMissingAccession is returned for a record without an accession.
var ErrMissingAccession = errors.New("hmdb record has no accession")

// Taxonomy is the classification block of an HMDB record.
type Taxonomy struct {
	Kingdom            string `json:"kingdom"`
	SuperClass         string `json:"super_class"`
	Class              string `json:"class"`
	SubClass           string `json:"sub_class"`
	DirectParent       string `json:"direct_parent"`
	MolecularFramework string `json:"molecular_framework"`
}

// Record is one metabolite as exported by HMDB. Field names follow the
// export, including its misspelled monoisotopic weight.
type Record struct {
	Accession                  string    `json:"accession"`
	Name                       string    `json:"name"`
	Description                string    `json:"description"`
	ChemicalFormula            string    `json:"chemical_formula"`
	AverageMolecularWeight     Number    `json:"average_molecular_weight"`
	MonisotopicMolecularWeight Number    `json:"monisotopic_molecular_weight"`
	IupacName                  string    `json:"iupac_name"`
	TraditionalIupac           string    `json:"traditional_iupac"`
	CasRegistryNumber          string    `json:"cas_registry_number"`
	Smiles                     string    `json:"smiles"`
	Inchi                      string    `json:"inchi"`
	Inchikey                   string    `json:"inchikey"`
	Taxonomy                   *Taxonomy `json:"taxonomy"`
	PubchemCompoundID          Text      `json:"pubchem_compound_id"`
}

// Number accepts a JSON number, a numeric string or null. Empty strings
// and null leave it unset.
type Number struct {
	Value *float64
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			n.Value = nil
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", raw, err)
	}
	n.Value = &f
	return nil
}

// Text accepts a JSON string, number or null.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(data)
	}
	return nil
}

// ToMetabolite maps r to a stored document; the accession becomes the id.
func (r *Record) ToMetabolite() (*model.Metabolite, error) {
	id := strings.TrimSpace(r.Accession)
	if id == "" {
		return nil, ErrMissingAccession
	}
	m := &model.Metabolite{
		ID:                          id,
		CommonName:                  r.Name,
		Description:                 r.Description,
		Formula:                     r.ChemicalFormula,
		AverageMolecularWeight:      r.AverageMolecularWeight.Value,
		MonoisotopicMolecularWeight: r.MonisotopicMolecularWeight.Value,
		IupacName:                   r.IupacName,
		TraditionalIupacName:        r.TraditionalIupac,
		CasRegistryNumber:           r.CasRegistryNumber,
		Smiles:                      r.Smiles,
		InchiIdentifier:             r.Inchi,
		InchiKey:                    r.Inchikey,
		PubchemCompoundID:           string(r.PubchemCompoundID),
	}
	if r.Taxonomy != nil {
		m.Taxonomy = &model.Taxonomy{
			Kingdom:            r.Taxonomy.Kingdom,
			SuperClass:         r.Taxonomy.SuperClass,
			Class:              r.Taxonomy.Class,
			SubClass:           r.Taxonomy.SubClass,
			DirectParent:       r.Taxonomy.DirectParent,
			MolecularFramework: r.Taxonomy.MolecularFramework,
		}
	}
	return m, nil
}

// Decode reads either a JSON array of records or a stream of
// newline-delimited records and calls fn for each one in order.
// Decoding stops at the first error returned by fn.
func Decode(r io.Reader, fn func(*Record) error) error {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil
	} else if err != nil {
		return err
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var records []*Record
		if err := dec.Decode(&records); err != nil {
			return fmt.Errorf("failed to decode hmdb array: %w", err)
		}
		for _, rec := range records {
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	}

	for n := 1; ; n++ {
		rec := &Record{}
		err := dec.Decode(rec)
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to decode hmdb record %d: %w", n, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
