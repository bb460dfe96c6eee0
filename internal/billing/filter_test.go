package billing

import (
	"testing"

	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixture() []model.Bill {
	return []model.Bill{
		newBill("1", model.BillStatusUnpaid, 500000, 0, withStudent("s1", "Budi Santoso", "10A", "X A"), withMajor("ipa", "IPA")),
		newBill("2", model.BillStatusPartial, 500000, 200000, withStudent("s2", "Siti Aminah", "10A", "X A"), withMajor("ips", "IPS")),
		newBill("3", model.BillStatusPaid, 500000, 500000, withStudent("s3", "Andi Pratama", "11B", "XI B"), withMajor("ipa", "IPA")),
		newBill("4", model.BillStatusPending, 300000, 0, withStudent("s4", "Rina Budiarti", "11B", "XI B"), withMajor("ips", "IPS")),
	}
}

func ids(bills []model.Bill) []string {
	out := make([]string, 0, len(bills))
	for _, b := range bills {
		out = append(out, b.ID)
	}
	return out
}

func TestApplyFilter_ClassOnly(t *testing.T) {
	bills := []model.Bill{
		newBill("1", model.BillStatusUnpaid, 100, 0, withStudent("s1", "A", "10A", "X A")),
		newBill("2", model.BillStatusPaid, 100, 100, withStudent("s2", "B", "10A", "X A")),
		newBill("3", model.BillStatusUnpaid, 100, 0, withStudent("s3", "C", "11B", "XI B")),
	}

	got := ApplyFilter(bills, Filter{Kelas: "10A", Status: StatusAll})

	assert.Len(t, got, 2)
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestApplyFilter_Fields(t *testing.T) {
	bills := filterFixture()

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty passes everything", Filter{}, []string{"1", "2", "3", "4"}},
		{"all status passes everything", Filter{Status: StatusAll}, []string{"1", "2", "3", "4"}},
		{"name is case-insensitive substring", Filter{Nama: "BUDI"}, []string{"1", "4"}},
		{"name is trimmed", Filter{Nama: "  siti "}, []string{"2"}},
		{"major", Filter{Jurusan: "ipa"}, []string{"1", "3"}},
		{"class and major", Filter{Kelas: "11B", Jurusan: "ips"}, []string{"4"}},
		{"exact status", Filter{Status: "partial"}, []string{"2"}},
		{"pending only under its own value", Filter{Status: "pending"}, []string{"4"}},
		{"belum lunas excludes paid and pending", Filter{Status: StatusBelumLunas}, []string{"1", "2"}},
		{"conjunction with no match", Filter{Nama: "andi", Status: StatusBelumLunas}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(ApplyFilter(bills, tc.filter)))
		})
	}
}

func TestApplyFilter_Conjunction(t *testing.T) {
	bills := filterFixture()
	filters := []Filter{
		{Nama: "a"},
		{Kelas: "10A", Status: StatusBelumLunas},
		{Jurusan: "ips", Status: "pending"},
		{Nama: "i", Kelas: "11B", Jurusan: "ipa", Status: "paid"},
	}

	for _, f := range filters {
		got := ApplyFilter(bills, f)
		in := make(map[string]bool)
		for _, b := range got {
			in[b.ID] = true
			assert.True(t, f.Match(b), "bill %s in result must match %+v", b.ID, f)
		}
		for _, b := range bills {
			if !in[b.ID] {
				assert.False(t, f.Match(b), "bill %s outside result must fail %+v", b.ID, f)
			}
		}
	}
}

func TestApplyFilter_BelumLunasNeverPaidOrPending(t *testing.T) {
	statuses := []model.BillStatus{
		model.BillStatusUnpaid, model.BillStatusPartial, model.BillStatusPaid, model.BillStatusPending, "unknown",
	}
	var bills []model.Bill
	for i, s := range statuses {
		bills = append(bills, newBill(string(rune('a'+i)), s, 100, 0))
	}

	for _, b := range ApplyFilter(bills, Filter{Status: StatusBelumLunas}) {
		assert.NotEqual(t, model.BillStatusPaid, b.Status)
		assert.NotEqual(t, model.BillStatusPending, b.Status)
	}
}

func TestSearch_NoCriteria(t *testing.T) {
	_, err := Search(filterFixture(), Filter{Status: StatusAll, Nama: "   "})
	require.ErrorIs(t, err, ErrNoCriteria)

	got, err := Search(filterFixture(), Filter{Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(got))
}
