package textnorm

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "", Normalize("--,.;"))
}

func TestNormalize_Uppercase(t *testing.T) {
	assert.Equal(t, "KISUMU CENTRAL", Normalize("Kisumu Central"))
}

func TestNormalize_Punctuation(t *testing.T) {
	assert.Equal(t, "AWASI ONJIKO", Normalize("Awasi/Onjiko"))
	assert.Equal(t, "NYALENDA A", Normalize("Nyalenda 'A'"))
	assert.Equal(t, "EAST KANO WAWIDHI", Normalize("East Kano-Wawidhi"))
	assert.Equal(t, "AGRICULTURE FISHERIES LIVESTOCK", Normalize("Agriculture, Fisheries & Livestock"))
}

func TestNormalize_CamelCase(t *testing.T) {
	assert.Equal(t, "COUNTY WIDE", Normalize("countyWide"))
	assert.Equal(t, "PROJECT COUNTY WIDE", Normalize("Project CountyWide"))
}

func TestNormalize_CollapseSpaces(t *testing.T) {
	assert.Equal(t, "KOLWA EAST", Normalize("  Kolwa \t\n  East  "))
}

func TestNormalize_FoldsAccents(t *testing.T) {
	assert.Equal(t, "CAFE", Normalize("Café"))
}

func TestNormalize_Numeric(t *testing.T) {
	assert.Equal(t, "2025 2026", Normalize("2025-2026"))
}

func TestNormalize_Idempotent(t *testing.T) {
	fixed := []string{
		"Kisumu East and Kisumu Central",
		"countyWide",
		"Nyalenda \"A\"",
		"Département: Santé",
		"ALL-WARDS",
		"KABONYO/KANYAGWAL",
		"Ǆemal ǅ",
	}
	for _, s := range fixed {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}

	faker := gofakeit.New(42)
	for i := 0; i < 200; i++ {
		for _, s := range []string{faker.Sentence(6), faker.City(), faker.Street(), faker.Company()} {
			once := Normalize(s)
			assert.Equal(t, once, Normalize(once), "input %q", s)
		}
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "", Clean(nil))
	assert.Equal(t, "abc", Clean("  abc "))
	assert.Equal(t, "12", Clean(12))
	assert.Equal(t, "12", Clean(12.0))
	assert.Equal(t, "12.5", Clean(12.5))
	assert.Equal(t, "7", Clean(int64(7)))
}

func TestSignificant(t *testing.T) {
	words := Words("KISUMU EAST OF A ROAD")
	assert.Equal(t, []string{"KISUMU", "EAST", "ROAD"}, Significant(words, 2))
	assert.Nil(t, Significant(nil, 2))
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "KABONYOKANYAGWAL", Compact("KABONYO  KANYAGWAL"))
}
