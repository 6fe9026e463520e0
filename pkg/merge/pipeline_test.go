package merge

import (
	"errors"
	"strings"
	"testing"

	"github.com/ruslano69/xlmerge/pkg/table"
)

func TestRun_EndToEnd(t *testing.T) {
	staff := table.New("Emp ID", "ФИО")
	staff.AppendRow([]string{"1", "Иванов"})
	staff.AppendRow([]string{"2", "Петров"})
	staff.AppendRow([]string{"2", "Петров (повтор)"})
	payroll := table.New("employee_id", "Salary")
	payroll.AppendRow([]string{"2", "500"})
	payroll.AppendRow([]string{"3", "700"})

	res, err := Run([]RawSource{
		{Spec: SourceSpec{Name: "staff.xlsx"}, Table: staff},
		{Spec: SourceSpec{Name: "payroll.xlsx"}, Table: payroll},
	}, Options{JoinMode: JoinOuter, FillValue: "-", Prefix: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Ключевые колонки выведены эвристикой, дубликат посчитан.
	if len(res.Warnings) != 1 || res.Warnings[0].Source != "staff.xlsx" || res.Warnings[0].Count != 1 {
		t.Errorf("warnings = %v", res.Warnings)
	}
	if res.Stats.TotalRows != 3 || res.Stats.FullyMatched != 1 || res.Stats.Unmatched != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}

	// Префиксование разнесло одноимённые поля по источникам.
	for _, col := range res.Clean.Columns {
		if col != KeyColumn && !strings.Contains(col, PrefixSep) {
			t.Errorf("column %q is not source-prefixed", col)
		}
	}
	for _, col := range res.Clean.Columns {
		if strings.HasPrefix(col, TechPrefix) {
			t.Errorf("service column %q in clean view", col)
		}
	}
	if res.Annotated.ColumnCount() <= res.Clean.ColumnCount() {
		t.Error("annotated view lost its service columns")
	}
}

func TestRun_MissingKeyColumn(t *testing.T) {
	a := table.New("id", "x")
	a.AppendRow([]string{"1", "a"})
	b := table.New("id", "y")
	b.AppendRow([]string{"1", "b"})

	_, err := Run([]RawSource{
		{Spec: SourceSpec{Name: "a", KeyColumn: "nope"}, Table: a},
		{Spec: SourceSpec{Name: "b"}, Table: b},
	}, Options{JoinMode: JoinOuter})
	var missing *MissingKeyColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingKeyColumnError", err)
	}
}

func TestRun_SingleSourceFails(t *testing.T) {
	a := table.New("id", "x")
	a.AppendRow([]string{"1", "a"})
	if _, err := Run([]RawSource{{Spec: SourceSpec{Name: "a"}, Table: a}}, Options{JoinMode: JoinOuter}); err == nil {
		t.Fatal("Run() with one source: expected error")
	}
}
