package merge

import (
	"reflect"
	"testing"

	"github.com/ruslano69/xlmerge/pkg/table"
)

// preparedFrom собирает Prepared из таблицы с канонической ключевой
// колонкой - без прогонки через PrepareSource.
func preparedFrom(name string, tbl *table.Table) *Prepared {
	keyIdx := tbl.ColumnIndex(KeyColumn)
	keys := make(map[string]struct{}, tbl.RowCount())
	for i := range tbl.Rows {
		keys[tbl.Cell(i, keyIdx)] = struct{}{}
	}
	return &Prepared{Name: name, Table: tbl, Keys: keys}
}

func twoSources() []*Prepared {
	a := table.New(KeyColumn, "name")
	a.AppendRow([]string{"1", "Alice"})
	a.AppendRow([]string{"2", "Bob"})
	a.AppendRow([]string{"3", "Carol"})
	b := table.New(KeyColumn, "dept")
	b.AppendRow([]string{"2", "HR"})
	b.AppendRow([]string{"3", "IT"})
	b.AppendRow([]string{"4", "Sales"})
	return []*Prepared{preparedFrom("a", a), preparedFrom("b", b)}
}

func keysOf(t *table.Table) []string {
	idx := t.ColumnIndex(KeyColumn)
	out := make([]string, 0, t.RowCount())
	for i := range t.Rows {
		out = append(out, t.Cell(i, idx))
	}
	return out
}

func TestReduce_Outer(t *testing.T) {
	got, err := Reduce(twoSources(), JoinOuter)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if !reflect.DeepEqual(got.Columns, []string{KeyColumn, "name", "dept"}) {
		t.Fatalf("columns = %v", got.Columns)
	}
	// Порядок: левые ключи, затем только-правые в правом порядке.
	if want := []string{"1", "2", "3", "4"}; !reflect.DeepEqual(keysOf(got), want) {
		t.Fatalf("keys = %v, want %v", keysOf(got), want)
	}
	// Непарные стороны пустые.
	if got.Cell(0, 2) != "" {
		t.Errorf("row 1 dept = %q, want empty", got.Cell(0, 2))
	}
	if got.Cell(3, 1) != "" {
		t.Errorf("row 4 name = %q, want empty", got.Cell(3, 1))
	}
	if got.Cell(1, 2) != "HR" {
		t.Errorf("row 2 dept = %q, want HR", got.Cell(1, 2))
	}
}

func TestReduce_Inner(t *testing.T) {
	got, err := Reduce(twoSources(), JoinInner)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if want := []string{"2", "3"}; !reflect.DeepEqual(keysOf(got), want) {
		t.Errorf("keys = %v, want %v", keysOf(got), want)
	}
}

func TestReduce_Left(t *testing.T) {
	got, err := Reduce(twoSources(), JoinLeft)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(keysOf(got), want) {
		t.Errorf("keys = %v, want %v", keysOf(got), want)
	}
}

func TestReduce_Right(t *testing.T) {
	got, err := Reduce(twoSources(), JoinRight)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if want := []string{"2", "3", "4"}; !reflect.DeepEqual(keysOf(got), want) {
		t.Errorf("keys = %v, want %v", keysOf(got), want)
	}
	// Ключ только справа: имя слева пустое.
	if got.Cell(2, 1) != "" {
		t.Errorf("row 4 name = %q, want empty", got.Cell(2, 1))
	}
}

func TestReduce_IdenticalKeySetsAllModesAgree(t *testing.T) {
	make2 := func() []*Prepared {
		a := table.New(KeyColumn, "x")
		a.AppendRow([]string{"1", "a1"})
		a.AppendRow([]string{"2", "a2"})
		b := table.New(KeyColumn, "y")
		b.AppendRow([]string{"1", "b1"})
		b.AppendRow([]string{"2", "b2"})
		return []*Prepared{preparedFrom("a", a), preparedFrom("b", b)}
	}
	var results []*table.Table
	for _, mode := range []JoinMode{JoinOuter, JoinInner, JoinLeft, JoinRight} {
		got, err := Reduce(make2(), mode)
		if err != nil {
			t.Fatalf("Reduce(%s) error = %v", mode, err)
		}
		results = append(results, got)
	}
	for i := 1; i < len(results); i++ {
		if !reflect.DeepEqual(results[0].Rows, results[i].Rows) {
			t.Errorf("mode %d disagrees with outer on identical key sets", i)
		}
	}
}

func TestReduce_ThreeWayOuter(t *testing.T) {
	srcs := twoSources()
	c := table.New(KeyColumn, "grade")
	c.AppendRow([]string{"3", "A"})
	c.AppendRow([]string{"5", "B"})
	srcs = append(srcs, preparedFrom("c", c))

	got, err := Reduce(srcs, JoinOuter)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if want := []string{"1", "2", "3", "4", "5"}; !reflect.DeepEqual(keysOf(got), want) {
		t.Errorf("keys = %v, want %v", keysOf(got), want)
	}
	if !reflect.DeepEqual(got.Columns, []string{KeyColumn, "name", "dept", "grade"}) {
		t.Errorf("columns = %v", got.Columns)
	}
}

func TestReduce_TooFewSources(t *testing.T) {
	if _, err := Reduce(twoSources()[:1], JoinOuter); err == nil {
		t.Fatal("Reduce() with one source: expected error")
	}
}

func TestParseJoinMode(t *testing.T) {
	if m, err := ParseJoinMode(""); err != nil || m != JoinOuter {
		t.Errorf("ParseJoinMode(\"\") = %v, %v", m, err)
	}
	if m, err := ParseJoinMode("inner"); err != nil || m != JoinInner {
		t.Errorf("ParseJoinMode(inner) = %v, %v", m, err)
	}
	if _, err := ParseJoinMode("cross"); err == nil {
		t.Error("ParseJoinMode(cross): expected error")
	}
}
