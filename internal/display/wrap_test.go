package display

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestWrap(t *testing.T) {
	long := strings.Repeat("drive ", 30)

	for _, line := range strings.Split(Wrap(long), "\n") {
		if len(line) > DefaultWidth {
			t.Errorf("line exceeds %d columns: %q", DefaultWidth, line)
		}
	}

	for _, line := range strings.Split(WrapIndent(long, 4), "\n") {
		if !strings.HasPrefix(line, "    ") {
			t.Errorf("line not indented: %q", line)
		}
		if len(line) > DefaultWidth {
			t.Errorf("line exceeds %d columns: %q", DefaultWidth, line)
		}
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp string
	}{
		"empty":      {in: "", exp: ""},
		"lower":      {in: "bank", exp: "Bank"},
		"already up": {in: "Cafe", exp: "Cafe"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "result", Capitalize(tt.in), tt.exp)
		})
	}
}

func TestTable(t *testing.T) {
	got := Table([][]string{
		{"#", "Name", "Time"},
		{"1", "ABC", "0:42.100"},
		{"10", "ZZ", "1:02.000"},
	})

	exp := "#   Name  Time\n" +
		"1   ABC   0:42.100\n" +
		"10  ZZ    1:02.000\n"
	testutil.AssertEqual(t, "table", got, exp)
}
