package pipeline

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"covidpulse/pkg/contracts/domain"
)

var previewColumns = []string{
	domain.ColumnLocation,
	domain.ColumnDate,
	domain.ColumnNewCases,
	domain.ColumnNewDeaths,
	domain.ColumnTotalDeaths,
	domain.ColumnPeopleVaccinated,
	domain.ColumnPopulation,
}

// writePreview prints the first n rows and per-column non-null counts of a
// freshly loaded dataset.
func writePreview(w io.Writer, ds *domain.Dataset, n int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for i, col := range previewColumns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)

	for _, rec := range ds.Head(n) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.Location,
			rec.RawDate,
			rec.NewCases,
			rec.NewDeaths,
			rec.TotalDeaths,
			rec.PeopleVaccinated,
			rec.Population,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	info := ds.Info()
	fmt.Fprintf(w, "\n%s rows, %d columns\n", humanize.Comma(int64(info.Rows)), info.Columns)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, col := range previewColumns {
		fmt.Fprintf(tw, "%s\t%s non-null\t\n", col, humanize.Comma(int64(info.NonNull[col])))
	}
	return tw.Flush()
}
