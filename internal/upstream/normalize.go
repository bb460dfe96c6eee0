package upstream

import (
	"strings"
	"time"

	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// Normalize resolves references across the raw collections and returns a
// snapshot whose fields are all non-null. Unresolvable names become
// model.Placeholder and unreadable amounts zero.
func Normalize(raw Raw, fetchedAt time.Time) *model.Snapshot {
	classes := NormalizeClasses(raw.Classes)
	majors := NormalizeMajors(raw.Majors)
	lk := newLookups(classes, majors)

	students := normalizeStudents(raw.Students, lk)
	byID := make(map[string]model.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}

	return &model.Snapshot{
		FetchedAt: fetchedAt,
		Bills:     normalizeBills(raw.Bills, lk, byID),
		Students:  students,
		Classes:   classes,
		Majors:    majors,
		Kas:       NormalizeKas(raw.Kas),
	}
}

type lookups struct {
	classes map[string]model.Class
	majors  map[string]model.Major
	units   map[string]string
}

func newLookups(classes []model.Class, majors []model.Major) lookups {
	lk := lookups{
		classes: make(map[string]model.Class, len(classes)),
		majors:  make(map[string]model.Major, len(majors)),
		units:   make(map[string]string),
	}
	for _, c := range classes {
		lk.classes[c.ID] = c
	}
	for _, m := range majors {
		lk.majors[m.ID] = m
	}
	return lk
}

// NormalizeClasses drops entries without an id.
func NormalizeClasses(in []ClassDTO) []model.Class {
	out := make([]model.Class, 0, len(in))
	for _, c := range in {
		if c.ID == "" {
			continue
		}
		out = append(out, model.Class{ID: c.ID.String(), Name: orPlaceholder(c.Name), UnitID: c.UnitID.String()})
	}
	return out
}

// NormalizeMajors drops entries without an id.
func NormalizeMajors(in []MajorDTO) []model.Major {
	out := make([]model.Major, 0, len(in))
	for _, m := range in {
		if m.ID == "" {
			continue
		}
		out = append(out, model.Major{ID: m.ID.String(), Name: orPlaceholder(m.Name), UnitID: m.UnitID.String()})
	}
	return out
}

func normalizeStudents(in []StudentDTO, lk lookups) []model.Student {
	out := make([]model.Student, 0, len(in))
	for _, s := range in {
		out = append(out, normalizeStudent(s, lk))
	}
	return out
}

func normalizeStudent(s StudentDTO, lk lookups) model.Student {
	st := model.Student{
		ID:      s.ID.String(),
		Name:    orPlaceholder(s.Name),
		Email:   s.Email.String(),
		Phone:   s.Phone.String(),
		Address: s.Address.String(),
		ClassID: s.ClassID.String(),
		MajorID: s.MajorID.String(),
		UnitID:  s.UnitID.String(),
	}

	var className, majorName, unitName string
	if a := s.Account; a != nil {
		st.NISN = a.NISN.String()
		st.NIK = a.NIK.String()
		st.FatherName = a.FatherName.String()
		st.MotherName = a.MotherName.String()
		st.GuardianName = a.GuardianName.String()
		st.SpecialNeeds = bool(a.SpecialNeeds)

		st.ClassID = firstNonEmpty(a.ClassID.String(), st.ClassID)
		st.MajorID = firstNonEmpty(a.MajorID.String(), st.MajorID)
		st.UnitID = firstNonEmpty(a.UnitID.String(), st.UnitID)
		if a.Class != nil {
			st.ClassID = firstNonEmpty(st.ClassID, a.Class.ID.String())
			className = a.Class.Name.String()
		}
		if a.Major != nil {
			st.MajorID = firstNonEmpty(st.MajorID, a.Major.ID.String())
			majorName = a.Major.Name.String()
		}
		if a.Unit != nil {
			st.UnitID = firstNonEmpty(st.UnitID, a.Unit.ID.String())
			unitName = a.Unit.Name.String()
			if st.UnitID != "" && unitName != "" {
				lk.units[st.UnitID] = unitName
			}
		}
	}

	if className == "" {
		className = lk.classes[st.ClassID].Name
	}
	if majorName == "" {
		majorName = lk.majors[st.MajorID].Name
	}
	if st.UnitID == "" {
		st.UnitID = firstNonEmpty(lk.classes[st.ClassID].UnitID, lk.majors[st.MajorID].UnitID)
	}
	if unitName == "" {
		unitName = lk.units[st.UnitID]
	}

	st.ClassName = orPlaceholder(flexString(className))
	st.MajorName = orPlaceholder(flexString(majorName))
	st.UnitName = orPlaceholder(flexString(unitName))
	return st
}

// normalizeBills resolves each bill's owner from its nested siswa, falling
// back to the student collection.
func normalizeBills(in []BillDTO, lk lookups, students map[string]model.Student) []model.Bill {
	out := make([]model.Bill, 0, len(in))
	for _, b := range in {
		out = append(out, normalizeBill(b, lk, students))
	}
	return out
}

func normalizeBill(b BillDTO, lk lookups, students map[string]model.Student) model.Bill {
	bill := model.Bill{
		ID:        b.ID.String(),
		Number:    b.Number.String(),
		StudentID: b.StudentID.String(),
		Status:    billStatus(b.Status),
		Total:     b.Total.Decimal,
		Paid:      b.Paid.Decimal,
		CreatedAt: firstTime(b.CreatedAt, b.CreatedAtSnake),
		Items:     make([]model.BillItem, 0, len(b.Items)),
		Payments:  make([]model.Payment, 0, len(b.Payments)),
	}

	var owner model.Student
	if b.Student != nil {
		owner = normalizeStudent(*b.Student, lk)
		bill.StudentID = firstNonEmpty(bill.StudentID, owner.ID)
		if known, ok := students[bill.StudentID]; ok {
			owner = mergeStudent(owner, known)
		}
	} else if known, ok := students[bill.StudentID]; ok {
		owner = known
	} else {
		owner = model.Student{
			ID:        bill.StudentID,
			Name:      model.Placeholder,
			ClassName: model.Placeholder,
			MajorName: model.Placeholder,
			UnitName:  model.Placeholder,
		}
	}
	bill.Student = owner.Ref()
	bill.Student.ID = bill.StudentID

	for _, it := range b.Items {
		bill.Items = append(bill.Items, model.BillItem{
			ID:          it.ID.String(),
			Description: it.Description.String(),
			Amount:      it.Amount.Decimal,
			DueDate:     it.DueDate.Time,
			Status:      itemStatus(it.Status),
			Month:       int(it.Month),
			Year:        int(it.Year),
		})
	}
	for _, p := range b.Payments {
		bill.Payments = append(bill.Payments, model.Payment{
			ID:        p.ID.String(),
			Amount:    p.Amount.Decimal,
			Method:    p.Method.String(),
			Verified:  bool(p.Verified),
			CreatedAt: firstTime(p.CreatedAt, p.CreatedAtSnake),
			Note:      p.Note.String(),
		})
	}
	return bill
}

// mergeStudent fills placeholders of the nested copy from the collection.
func mergeStudent(nested, known model.Student) model.Student {
	if nested.Name == model.Placeholder {
		nested.Name = known.Name
	}
	if nested.ClassID == "" {
		nested.ClassID = known.ClassID
	}
	if nested.ClassName == model.Placeholder {
		nested.ClassName = known.ClassName
	}
	if nested.MajorID == "" {
		nested.MajorID = known.MajorID
	}
	if nested.MajorName == model.Placeholder {
		nested.MajorName = known.MajorName
	}
	if nested.UnitID == "" {
		nested.UnitID = known.UnitID
	}
	if nested.UnitName == model.Placeholder {
		nested.UnitName = known.UnitName
	}
	return nested
}

func NormalizeKas(in []KasDTO) []model.KasEntry {
	out := make([]model.KasEntry, 0, len(in))
	for _, k := range in {
		out = append(out, model.KasEntry{
			ID:          k.ID.String(),
			Description: k.Description.String(),
			Amount:      k.Amount.Decimal,
			Type:        model.KasType(strings.ToLower(k.Type.String())),
			CreatedAt:   firstTime(k.CreatedAt, k.CreatedAtSnake),
		})
	}
	return out
}

// billStatus maps unknown statuses to unpaid so they stay visible as open
// obligations.
func billStatus(s flexString) model.BillStatus {
	switch st := model.BillStatus(strings.ToLower(s.String())); st {
	case model.BillStatusUnpaid, model.BillStatusPartial, model.BillStatusPaid, model.BillStatusPending:
		return st
	default:
		return model.BillStatusUnpaid
	}
}

func itemStatus(s flexString) model.ItemStatus {
	if strings.EqualFold(s.String(), string(model.ItemStatusPaid)) {
		return model.ItemStatusPaid
	}
	return model.ItemStatusUnpaid
}

func orPlaceholder(s flexString) string {
	if v := strings.TrimSpace(s.String()); v != "" {
		return v
	}
	return model.Placeholder
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
