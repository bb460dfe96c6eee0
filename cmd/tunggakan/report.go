package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/stemsi/tagihan-dashboard/internal/billing"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// writeReport prints the arrears report of the bills matching f.
func writeReport(out io.Writer, snap *model.Snapshot, f billing.Filter, top int, now time.Time) error {
	bills := billing.ApplyFilter(snap.Bills, f)
	counts := billing.Summarize(bills)

	fmt.Fprintf(out, "=== Laporan Tunggakan (generasi %d, %s) ===\n", snap.Generation, snap.FetchedAt.In(now.Location()).Format("02-01-2006 15:04"))
	fmt.Fprintf(out, "Tagihan: %d total, %d lunas, %d belum lunas\n", counts.Total, counts.Paid, counts.Unpaid)
	fmt.Fprintf(out, "Total tunggakan: %s\n", billing.FormatRupiah(billing.TotalArrears(bills)))
	fmt.Fprintf(out, "Pendapatan %s: %s\n", billing.MonthLabel(now.Year(), int(now.Month())),
		billing.FormatRupiah(billing.MonthlyRevenue(bills, snap.Kas, now)))
	fmt.Fprintf(out, "Saldo kas: %s\n\n", billing.FormatRupiah(billing.KasSummary(snap.Kas).Balance))

	entries := billing.TopArrears(bills, top)
	if len(entries) == 0 {
		fmt.Fprintln(out, "Tidak ada tunggakan.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "No\tNo. Tagihan\tSiswa\tKelas\tTunggakan\tJatuh Tempo\t")
	for i, e := range entries {
		due := "-"
		if e.DueDate != nil {
			due = e.DueDate.Format("02-01-2006")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			i+1, e.BillNumber, e.StudentName, e.ClassLabel, billing.FormatRupiah(e.Outstanding), due)
	}
	return tw.Flush()
}
