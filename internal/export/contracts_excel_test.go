package export

import "testing"

func TestColName(t *testing.T) {
	cases := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA", 52: "AZ", 53: "BA"}
	for n, want := range cases {
		if got := colName(n); got != want {
			t.Errorf("colName(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestNewWorkbook_HeadersAndRows(t *testing.T) {
	wb, err := NewWorkbook([]SheetSpec{{
		Title:  "Контракты",
		Header: []string{"ID", "Тема"},
		Rows:   [][]string{{"1", "Распределённый кеш"}, {"2", "Спецтема"}},
	}})
	if err != nil {
		t.Fatal(err)
	}

	got, err := wb.File.GetCellValue("Контракты", "B1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Тема" {
		t.Errorf("заголовок B1 = %q", got)
	}
	got, err = wb.File.GetCellValue("Контракты", "B3")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Спецтема" {
		t.Errorf("ячейка B3 = %q", got)
	}
}
