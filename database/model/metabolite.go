package model

// Taxonomy is the optional chemical classification of a metabolite.
type Taxonomy struct {
	Kingdom            string `json:"kingdom" bson:"kingdom"`
	SuperClass         string `json:"super_class" bson:"super_class"`
	Class              string `json:"class" bson:"class"`
	SubClass           string `json:"sub_class" bson:"sub_class"`
	DirectParent       string `json:"direct_parent" bson:"direct_parent"`
	MolecularFramework string `json:"molecular_framework" bson:"molecular_framework"`
}

// Metabolite is a read-only document populated by the import process.
type Metabolite struct {
	ID                          string    `json:"id" bson:"_id" gorm:"primaryKey;column:id"`
	CommonName                  string    `json:"common_name" bson:"common_name"`
	Description                 string    `json:"description" bson:"description"`
	Formula                     string    `json:"formula" bson:"formula"`
	AverageMolecularWeight      *float64  `json:"average_molecular_weight" bson:"average_molecular_weight" gorm:"index"`
	MonoisotopicMolecularWeight *float64  `json:"monoisotopic_molecular_weight" bson:"monoisotopic_molecular_weight"`
	IupacName                   string    `json:"iupac_name" bson:"iupac_name"`
	TraditionalIupacName        string    `json:"traditional_iupac_name" bson:"traditional_iupac_name"`
	CasRegistryNumber           string    `json:"cas_registry_number" bson:"cas_registry_number"`
	Smiles                      string    `json:"smiles" bson:"smiles"`
	InchiIdentifier             string    `json:"inchi_identifier" bson:"inchi_identifier"`
	InchiKey                    string    `json:"inchi_key" bson:"inchi_key"`
	Taxonomy                    *Taxonomy `json:"taxonomy" bson:"taxonomy" gorm:"serializer:json"`
	PubchemCompoundID           string    `json:"pubchem_compound_id" bson:"pubchem_compound_id"`
}

// MetaboliteSummary is the search result projection.
type MetaboliteSummary struct {
	ID                     string   `json:"id" bson:"_id"`
	CommonName             string   `json:"common_name" bson:"common_name"`
	Formula                string   `json:"formula" bson:"formula"`
	AverageMolecularWeight *float64 `json:"average_molecular_weight" bson:"average_molecular_weight"`
	PubchemCompoundID      string   `json:"pubchem_compound_id" bson:"pubchem_compound_id"`
}

// Summary returns the search projection of m.
func (m *Metabolite) Summary() MetaboliteSummary {
	return MetaboliteSummary{
		ID:                     m.ID,
		CommonName:             m.CommonName,
		Formula:                m.Formula,
		AverageMolecularWeight: m.AverageMolecularWeight,
		PubchemCompoundID:      m.PubchemCompoundID,
	}
}
