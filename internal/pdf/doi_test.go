package pdf

import "testing"

func TestExtractDOI_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("hello, this is plain text and not a PDF at all")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractDOI(tt.data); err == nil {
				t.Error("ExtractDOI() error = nil, want error")
			}
		})
	}
}

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"inline", "Nature 2021. doi:10.1038/s41586-021-03819-2.", "10.1038/s41586-021-03819-2"},
		{"url", "https://doi.org/10.1101/2020.01.01.123456 accessed", "10.1101/2020.01.01.123456"},
		{"split over lines", "DOI 10.\n1093/bioinformatics/btz123", "10.1093/bioinformatics/btz123"},
		{"none", "Journal of Things, volume 3", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findDOI(tt.text); got != tt.want {
				t.Errorf("findDOI() = %q, want %q", got, tt.want)
			}
		})
	}
}
