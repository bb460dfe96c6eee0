package upstream

// Wire shapes of the upstream collections. Nested objects are pointers since
// any of them may be missing; Normalize turns these into model types.

type envelope[T any] struct {
	Data []T `json:"data"`
}

// BillDTO is a tagihan as served by GET /tagihan.
type BillDTO struct {
	ID             flexString   `json:"id"`
	Number         flexString   `json:"nomor_tagihan"`
	StudentID      flexString   `json:"id_siswa"`
	Status         flexString   `json:"status"`
	Total          flexAmount   `json:"total_jumlah"`
	Paid           flexAmount   `json:"jumlah_bayar"`
	CreatedAt      flexTime     `json:"createdAt"`
	CreatedAtSnake flexTime     `json:"created_at"`
	Items          []ItemDTO    `json:"item_tagihan"`
	Payments       []PaymentDTO `json:"pembayaran"`
	Student        *StudentDTO  `json:"siswa"`
}

// ItemDTO is one item_tagihan line.
type ItemDTO struct {
	ID          flexString `json:"id"`
	Description flexString `json:"deskripsi"`
	Amount      flexAmount `json:"jumlah"`
	DueDate     flexTime   `json:"jatuh_tempo"`
	Status      flexString `json:"status"`
	Month       flexInt    `json:"bulan"`
	Year        flexInt    `json:"tahun"`
}

// PaymentDTO is one pembayaran installment.
type PaymentDTO struct {
	ID             flexString `json:"id"`
	Amount         flexAmount `json:"jumlah"`
	Method         flexString `json:"metode_pembayaran"`
	Verified       flexBool   `json:"sudah_verifikasi"`
	CreatedAt      flexTime   `json:"createdAt"`
	CreatedAtSnake flexTime   `json:"created_at"`
	Note           flexString `json:"catatan"`
}

// StudentDTO is a siswa, either top level from GET /akun/siswa or nested in
// a bill.
type StudentDTO struct {
	ID      flexString  `json:"id"`
	Name    flexString  `json:"nama"`
	Email   flexString  `json:"email"`
	Phone   flexString  `json:"telepon"`
	Address flexString  `json:"alamat"`
	Account *AccountDTO `json:"akun_siswa"`

	// Some responses flatten the references onto the student itself.
	ClassID flexString `json:"id_kelas"`
	MajorID flexString `json:"id_jurusan"`
	UnitID  flexString `json:"id_unit"`
}

// AccountDTO is the akun_siswa record attached to a student.
type AccountDTO struct {
	NISN         flexString `json:"nisn"`
	NIK          flexString `json:"nik"`
	ClassID      flexString `json:"id_kelas"`
	MajorID      flexString `json:"id_jurusan"`
	UnitID       flexString `json:"id_unit"`
	Class        *ClassDTO  `json:"kelas"`
	Major        *MajorDTO  `json:"jurusan"`
	Unit         *UnitDTO   `json:"unit"`
	FatherName   flexString `json:"nama_ayah"`
	MotherName   flexString `json:"nama_ibu"`
	GuardianName flexString `json:"nama_wali"`
	SpecialNeeds flexBool   `json:"berkebutuhan_khusus"`
}

// ClassDTO is a kelas.
type ClassDTO struct {
	ID     flexString `json:"id"`
	Name   flexString `json:"nama_kelas"`
	UnitID flexString `json:"id_unit"`
}

// MajorDTO is a jurusan.
type MajorDTO struct {
	ID     flexString `json:"id"`
	Name   flexString `json:"nama_jurusan"`
	UnitID flexString `json:"id_unit"`
}

// UnitDTO is a school unit.
type UnitDTO struct {
	ID   flexString `json:"id"`
	Name flexString `json:"nama_unit"`
}

// KasDTO is a kas ledger entry.
type KasDTO struct {
	ID             flexString `json:"id"`
	Description    flexString `json:"deskripsi"`
	Amount         flexAmount `json:"jumlah"`
	Type           flexString `json:"tipe"`
	CreatedAt      flexTime   `json:"createdAt"`
	CreatedAtSnake flexTime   `json:"created_at"`
}

// Raw holds the five collections exactly as fetched.
type Raw struct {
	Bills    []BillDTO
	Students []StudentDTO
	Classes  []ClassDTO
	Majors   []MajorDTO
	Kas      []KasDTO
}
