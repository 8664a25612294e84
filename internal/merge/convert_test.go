package merge

import (
	"testing"

	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/partition"
	"github.com/agbru/tabulate/internal/record"
)

func parts(stat, moe, flag, alias string) metadata.VarParts {
	vp := metadata.VarParts{Stat: metadata.VarInfo{Name: stat, Alias: alias}}
	if moe != "" {
		vp.MOE = &metadata.VarInfo{Name: moe, Alias: alias + "_moe"}
	}
	if flag != "" {
		vp.Flag = &metadata.VarInfo{Name: flag, Alias: alias + "_flag"}
	}
	return vp
}

func value(t *testing.T, row record.Row, key string) string {
	t.Helper()
	v, ok := row.Value(key)
	if !ok {
		t.Fatalf("row has no value for %q: %v", key, row)
	}
	return v
}

func TestToRowsAliasesColumns(t *testing.T) {
	t.Parallel()
	p := &partition.Partition{VariableParts: []metadata.VarParts{
		parts("B01001_001E", "B01001_001M", "", "POP_B01001_001E_1_1"),
		parts("B01001_001E", "B01001_001M", "", "PPH_B01001_001E_1_1"),
	}}
	merged := table([]string{"B01001_001E", "B01001_001M", "state", "county"},
		[]string{"1200", "45", "36", "001"})

	rows := ToRows(ConvertParams{Partition: p, Merged: merged})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if value(t, row, "POP_B01001_001E_1_1") != "1200" || value(t, row, "PPH_B01001_001E_1_1") != "1200" {
		t.Errorf("stat aliases = %v", row)
	}
	if value(t, row, "POP_B01001_001E_1_1_moe") != "45" {
		t.Errorf("moe alias = %v", row)
	}
	if value(t, row, "county") != "001" || row.Has("B01001_001E") {
		t.Errorf("id columns = %v", row)
	}
}

func TestToRowsIncludePlaces(t *testing.T) {
	t.Parallel()
	p := &partition.Partition{VariableParts: []metadata.VarParts{parts("X", "", "", "V_X_1_1")}}
	merged := table([]string{"X", "state", "county subdivision"},
		[]string{"1", "09", "47500"},
		[]string{"2", "09", "99999"})

	rows := ToRows(ConvertParams{
		Partition:     p,
		Merged:        merged,
		IncludeGeoIDs: []string{"0947500"},
		IncludePlaces: true,
	})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if value(t, rows[0], "place") != "47500" || value(t, rows[0], "V_X_1_1") != "1" {
		t.Errorf("row = %v", rows[0])
	}
}

func TestToRowsGroups(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		partition *partition.Partition
		header    []string
		rows      [][]string
		want      []string
	}{
		{
			name: "race groups compare as integers",
			partition: &partition.Partition{
				RaceGroups: []int{1, 2},
				VariableParts: []metadata.VarParts{
					parts("Emp", "", "sEmp", "W"),
					parts("Emp", "", "sEmp", "B"),
				},
			},
			header: []string{"Emp", "sEmp", "RACE_GROUP", "county"},
			rows:   [][]string{{"10", "", "02", "001"}, {"20", "1", "1", "001"}, {"30", "", "7", "001"}},
			want:   []string{"B", "W"},
		},
		{
			name: "sex groups match after the first character",
			partition: &partition.Partition{
				SexGroups: []string{"SEX=1", "SEX=2"},
				VariableParts: []metadata.VarParts{
					parts("Emp", "", "", "M"),
					parts("Emp", "", "", "F"),
				},
			},
			header: []string{"Emp", "SEX", "county"},
			rows:   [][]string{{"10", "2", "001"}, {"20", "", "001"}},
			want:   []string{"F"},
		},
		{
			name: "vet groups",
			partition: &partition.Partition{
				VetGroups: []string{"VET_GROUP=3"},
				VariableParts: []metadata.VarParts{
					parts("Emp", "", "", "V"),
				},
			},
			header: []string{"Emp", "VET_GROUP", "county"},
			rows:   [][]string{{"10", "3", "001"}},
			want:   []string{"V"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rows := ToRows(ConvertParams{Partition: tt.partition, Merged: table(tt.header, tt.rows...)})
			if len(rows) != len(tt.want) {
				t.Fatalf("got %d rows, want %d", len(rows), len(tt.want))
			}
			for i, alias := range tt.want {
				if !rows[i].Has(alias) {
					t.Errorf("row %d = %v, want alias %s", i, rows[i], alias)
				}
				if rows[i].Has("Emp") {
					t.Errorf("row %d kept the raw stat column", i)
				}
				if value(t, rows[i], "county") != "001" {
					t.Errorf("row %d lost its id column", i)
				}
			}
		})
	}
}
