package model

import "time"

// Snapshot is one full, normalized fetch of the upstream collections.
// Derived views are always recomputed from a whole snapshot.
type Snapshot struct {
	Generation int64      `json:"generation"`
	FetchedAt  time.Time  `json:"fetched_at"`
	Bills      []Bill     `json:"tagihan"`
	Students   []Student  `json:"siswa"`
	Classes    []Class    `json:"kelas"`
	Majors     []Major    `json:"jurusan"`
	Kas        []KasEntry `json:"kas"`
}

// StudentByID returns the student with the given id.
func (s *Snapshot) StudentByID(id string) (Student, bool) {
	for _, st := range s.Students {
		if st.ID == id {
			return st, true
		}
	}
	return Student{}, false
}

// BillByID returns the bill with the given id.
func (s *Snapshot) BillByID(id string) (Bill, bool) {
	for _, b := range s.Bills {
		if b.ID == id {
			return b, true
		}
	}
	return Bill{}, false
}
