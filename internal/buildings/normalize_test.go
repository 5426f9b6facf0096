package buildings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"clean name unchanged", "Lincoln Hall", "Lincoln Hall"},
		{"two repetitions", "Lincoln Hall 1000 Lincoln Hall", "Lincoln Hall"},
		{"extra whitespace", "Lincoln Hall  1000   Lincoln Hall", "Lincoln Hall"},
		{
			name:     "three repetitions",
			input:    "Foellinger Auditorium 101 Foellinger Auditorium 102 Foellinger Auditorium",
			expected: "Foellinger Auditorium",
		},
		{"four repetitions", "Noyes Lab 1 Noyes Lab 2 Noyes Lab 3 Noyes Lab", "Noyes Lab"},
		{"truncated repeat", "Siebel Center 1404 Siebel", "Siebel Center"},
		{"trailing room number kept", "Room 1000", "Room 1000"},
		{"number between different words", "Building 2 Annex", "Building 2 Annex"},
		{"leading number kept", "1 Main Street", "1 Main Street"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanName(tt.input))
		})
	}
}

func TestCleanName_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Lincoln Hall",
		"Lincoln Hall 1000 Lincoln Hall",
		"A 1 A 2 A 1",
		"Siebel Center 1404 Siebel",
		"X 1 X 2 X 3 X 4 X",
		"Temple Hoyne Buell Hall n.a.",
		"  padded 7 padded  ",
		"Electrical & Computer Eng Bldg 2015 Electrical & Computer Eng Bldg",
	}
	for _, in := range inputs {
		once := CleanName(in)
		assert.Equal(t, once, CleanName(once), "input %q", in)
	}
}

func TestHasDuplicationArtifact(t *testing.T) {
	assert.True(t, HasDuplicationArtifact("Lincoln Hall 1000 Lincoln Hall"))
	assert.False(t, HasDuplicationArtifact("Lincoln Hall"))
	assert.False(t, HasDuplicationArtifact(""))
}

func TestStandardize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Electrical & Computer Eng Bldg", "Electrical & Computer Engineering Building"},
		{"Coordinated Science Lab", "Coordinated Science Laboratory"},
		{"chem lab", "chem Laboratory"},
		{"Krannert Ctr for Perf Arts", "Krannert Center for Perf Arts"},
		{"Labyrinth", "Labyrinth"},
		{"Speech & Hearing Sci Bldg", "Speech & Hearing Science Building"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Standardize(tt.input))
		})
	}
}

func TestGenerateID(t *testing.T) {
	assert.Equal(t, "siebel-center-for-computer-science", GenerateID("Siebel Center for Computer Science"))
	assert.Equal(t, "electrical-computer-engineering-building", GenerateID("Electrical & Computer Engineering Building"))
	assert.Equal(t, "hello", GenerateID("  Hello  "))
	assert.Equal(t, "", GenerateID(""))
}
