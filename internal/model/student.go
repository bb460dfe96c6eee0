package model

// Placeholder is the display fallback for names that could not be resolved.
const Placeholder = "-"

// Student represents a student account (siswa + akun_siswa) after normalization.
// Every field is non-null; unresolved names carry Placeholder.
type Student struct {
	ID           string `json:"id"`
	Name         string `json:"nama"`
	Email        string `json:"email"`
	Phone        string `json:"telepon"`
	Address      string `json:"alamat"`
	NISN         string `json:"nisn"`
	NIK          string `json:"nik"`
	ClassID      string `json:"id_kelas"`
	ClassName    string `json:"nama_kelas"`
	MajorID      string `json:"id_jurusan"`
	MajorName    string `json:"nama_jurusan"`
	UnitID       string `json:"id_unit"`
	UnitName     string `json:"nama_unit"`
	FatherName   string `json:"nama_ayah"`
	MotherName   string `json:"nama_ibu"`
	GuardianName string `json:"nama_wali"`
	SpecialNeeds bool   `json:"berkebutuhan_khusus"`
}

// Ref projects the student onto the reference embedded in each bill.
func (s Student) Ref() StudentRef {
	return StudentRef{
		ID:        s.ID,
		Name:      s.Name,
		ClassID:   s.ClassID,
		ClassName: s.ClassName,
		MajorID:   s.MajorID,
		MajorName: s.MajorName,
		UnitID:    s.UnitID,
		UnitName:  s.UnitName,
	}
}

// StudentRef is the owner of a bill, with class and major already resolved.
type StudentRef struct {
	ID        string `json:"id"`
	Name      string `json:"nama"`
	ClassID   string `json:"id_kelas"`
	ClassName string `json:"nama_kelas"`
	MajorID   string `json:"id_jurusan"`
	MajorName string `json:"nama_jurusan"`
	UnitID    string `json:"id_unit"`
	UnitName  string `json:"nama_unit"`
}

// ClassLabel renders "kelas - jurusan" for table display, or Placeholder when
// neither is known.
func (r StudentRef) ClassLabel() string {
	class := r.ClassName
	if class == "" {
		class = Placeholder
	}
	if r.MajorName == "" || r.MajorName == Placeholder {
		return class
	}
	if class == Placeholder {
		return r.MajorName
	}
	return class + " - " + r.MajorName
}
