package model

// Class represents a school class group (kelas).
type Class struct {
	ID     string `json:"id"`
	Name   string `json:"nama_kelas"`
	UnitID string `json:"id_unit,omitempty"`
}

// Unit represents a school unit (e.g. SMP, SMA) that owns classes and majors.
type Unit struct {
	ID   string `json:"id"`
	Name string `json:"nama_unit"`
}
