package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Header of the launch records export
const Header = `Flight Number,Launch Site,class,Payload Mass (kg),Booster Version,Booster Version Category`

// ScenarioCSV is a four-launch dataset: three CCAFS launches and one KSC launch
const ScenarioCSV = Header + `
1,CCAFS,1,500,F9 v1.0  B0003,v1.0
2,CCAFS,0,1500,F9 v1.1  B1003,v1.1
3,CCAFS,1,9000,F9 FT B1021.1,FT
4,KSC,1,3000,F9 FT B1031.1,FT
`

// Fictional launch lines cycled through by GenerateTestDataFile
var sampleLines = []string{
	`CCAFS LC-40,0,0.0,F9 v1.0  B0003,v1.0`,
	`CCAFS LC-40,0,525.0,F9 v1.0  B0005,v1.0`,
	`VAFB SLC-4E,0,500.0,F9 v1.1  B1003,v1.1`,
	`CCAFS LC-40,1,3170.0,F9 v1.1 B1011,v1.1`,
	`KSC LC-39A,1,2490.0,F9 FT B1031.1,FT`,
	`KSC LC-39A,1,5300.0,F9 FT B1032.1,FT`,
	`CCAFS SLC-40,1,4990.0,F9 B4 B1040.1,B4`,
	`VAFB SLC-4E,1,9600.0,F9 FT B1036.1,FT`,
	`CCAFS SLC-40,0,6460.0,F9 B5 B1046.1,B5`,
	`KSC LC-39A,0,3600.0,F9 B4 B1043.1,B4`,
}

// GenerateTestDataFile writes a launch records CSV with numLines rows into a
// temporary directory and returns its path.
func GenerateTestDataFile(t testing.TB, numLines int) string {
	t.Helper()

	if numLines < 1 {
		numLines = 1
	}

	var content strings.Builder
	content.WriteString(Header)
	content.WriteString("\n")
	for i := 0; i < numLines; i++ {
		fields := strings.SplitN(sampleLines[i%len(sampleLines)], ",", 2)
		content.WriteString(strconv.Itoa(i + 1))
		content.WriteString(",")
		content.WriteString(fields[0])
		content.WriteString(",")
		content.WriteString(fields[1])
		content.WriteString("\n")
	}

	return WriteFile(t, "launches.csv", content.String())
}

// WriteFile writes content to name inside a per-test temporary directory
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file %s: %v", path, err)
	}
	return path
}

// TempFilePath returns a path inside a per-test temporary directory. Does
// not create the file.
func TempFilePath(t testing.TB, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}
