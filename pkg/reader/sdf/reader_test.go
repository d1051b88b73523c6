package sdf

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
)

const twoRecords = `glycine zwitterion
  RDKit          3D

  5  4  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 N   0  3  0  0  0  0  0  0  0  0  0  0
    1.4500    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    2.0000    1.4000    0.1000 C   0  0  0  0  0  0  0  0  0  0  0  0
    3.2000    1.5000    0.3000 O   0  0  0  0  0  0  0  0  0  0  0  0
    1.2000    2.4000   -0.2000 O   0  5  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  2  3  1  0
  3  4  2  0
  3  5  1  0
M  CHG  2   1   1   5  -1
M  END
> <ID>
GLY-1

> 2 <NOTE> (extra)
line one
line two

$$$$

  confgen       2D

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.5000    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
M  END
$$$$
`

func TestReaderTwoRecords(t *testing.T) {
	reader := NewReader(strings.NewReader(twoRecords))

	if !reader.Next() {
		t.Fatalf("Expected first record, err = %v", reader.Err())
	}
	gly := reader.Molecule()
	if gly.Name != "glycine zwitterion" {
		t.Errorf("Expected name 'glycine zwitterion', got %q", gly.Name)
	}
	if gly.Index != 1 {
		t.Errorf("Expected index 1, got %d", gly.Index)
	}
	if len(gly.Atoms) != 5 || len(gly.Bonds) != 4 {
		t.Fatalf("Expected 5 atoms and 4 bonds, got %d and %d", len(gly.Atoms), len(gly.Bonds))
	}
	if gly.Atoms[0].Charge != 1 || gly.Atoms[4].Charge != -1 {
		t.Errorf("Expected charges +1/-1 from M  CHG, got %d/%d", gly.Atoms[0].Charge, gly.Atoms[4].Charge)
	}
	if diff := cmp.Diff(core.Bond{A: 2, B: 3, Order: 2}, gly.Bonds[2]); diff != "" {
		t.Errorf("bond mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(core.Vec3{1.2, 2.4, -0.2}, gly.Atoms[4].Pos); diff != "" {
		t.Errorf("position mismatch (-want +got):\n%s", diff)
	}
	wantProps := map[string]string{"ID": "GLY-1", "NOTE": "line one\nline two"}
	if diff := cmp.Diff(wantProps, gly.Props); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
	if !gly.Has3D() {
		t.Error("Expected glycine record to carry 3-D coordinates")
	}

	if !reader.Next() {
		t.Fatalf("Expected second record, err = %v", reader.Err())
	}
	second := reader.Molecule()
	if second.Name != "" {
		t.Errorf("Expected blank title, got %q", second.Name)
	}
	if second.Index != 2 {
		t.Errorf("Expected index 2, got %d", second.Index)
	}
	if second.Has3D() {
		t.Error("Expected flat record to report no 3-D coordinates")
	}

	if reader.Next() {
		t.Error("Expected end of input after two records")
	}
	if err := reader.Err(); err != nil {
		t.Errorf("Unexpected error at end of input: %v", err)
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "bad counts line",
			input: "title\nprog\n\n  x  0  0  0  0  0  0  0  0  0999 V2000\n",
		},
		{
			name:  "truncated atom block",
			input: "title\nprog\n\n  2  0  0  0  0  0  0  0  0  0999 V2000\n    0.0000    0.0000    0.0000 C   0  0\n",
		},
		{
			name:  "V3000",
			input: "title\nprog\n\n  0  0  0     0  0            999 V3000\n",
		},
		{
			name: "bond to missing atom",
			input: "title\nprog\n\n  1  1  0  0  0  0  0  0  0  0999 V2000\n" +
				"    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0\n" +
				"  1  2  1  0\nM  END\n$$$$\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewReader(strings.NewReader(tt.input))
			if !reader.Next() {
				t.Fatalf("Expected the malformed record to be reported, err = %v", reader.Err())
			}
			if reader.Molecule() != nil {
				t.Error("Expected no molecule for a malformed record")
			}
			var recErr *RecordError
			if !errors.As(reader.RecordErr(), &recErr) || recErr.Record != 1 {
				t.Errorf("Expected a record 1 error, got %v", reader.RecordErr())
			}
			if reader.Next() {
				t.Error("Expected end of input after the malformed record")
			}
			if err := reader.Err(); err != nil {
				t.Errorf("Unexpected read error: %v", err)
			}

			if _, err := ReadAll(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected ReadAll() to fail")
			}
		})
	}
}

func TestReaderSkipsMalformedRecord(t *testing.T) {
	input := "broken\nprog\n\n  1  1  0  0  0  0  0  0  0  0999 V2000\n" +
		"    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0\n" +
		"  1  9  1  0\nM  END\n> <ID>\nBAD\n\n$$$$\n" +
		// truncated atom block: the separator arrives in place of the second atom
		"short\nprog\n\n  2  0  0  0  0  0  0  0  0  0999 V2000\n" +
		"    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0\n$$$$\n" +
		"methanol\nprog\n\n  2  1  0  0  0  0  0  0  0  0999 V2000\n" +
		"    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0\n" +
		"    1.4000    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0\n" +
		"  1  2  1  0\nM  END\n$$$$\n"

	reader := NewReader(strings.NewReader(input))
	var names []string
	var bad []int
	for reader.Next() {
		if err := reader.RecordErr(); err != nil {
			var recErr *RecordError
			if errors.As(err, &recErr) {
				bad = append(bad, recErr.Record)
			}
			continue
		}
		mol := reader.Molecule()
		names = append(names, mol.Name)
		if mol.Index != 3 {
			t.Errorf("Expected %s at index 3, got %d", mol.Name, mol.Index)
		}
	}
	if err := reader.Err(); err != nil {
		t.Fatalf("Unexpected read error: %v", err)
	}
	if diff := cmp.Diff([]string{"methanol"}, names); diff != "" {
		t.Errorf("molecules mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, bad); diff != "" {
		t.Errorf("malformed records mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderEmptyInput(t *testing.T) {
	mols, err := ReadAll(strings.NewReader("\n\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(mols) != 0 {
		t.Errorf("Expected no molecules, got %d", len(mols))
	}
}
