package model

// Major represents a school major or field of study (jurusan).
type Major struct {
	ID     string `json:"id"`
	Name   string `json:"nama_jurusan"`
	UnitID string `json:"id_unit,omitempty"`
}
