package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickChecksumFile_PrefersWellKnownNames(t *testing.T) {
	got := pickChecksumFile([]string{"MRCONSO.RRF", "md5sum.txt", "NAMES.RRF.gz"})
	assert.Equal(t, "md5sum.txt", got)
}

func TestPickChecksumFile_FallsBackToAnyNameContainingMd5(t *testing.T) {
	got := pickChecksumFile([]string{"MRCONSO.RRF", "release.md5", "NAMES.RRF.gz"})
	assert.Equal(t, "release.md5", got)
}

func TestPickChecksumFile_NoneFound(t *testing.T) {
	got := pickChecksumFile([]string{"MRCONSO.RRF", "NAMES.RRF.gz"})
	assert.Equal(t, "", got)
}

func TestParseChecksums_StripsLeadingDotSlash(t *testing.T) {
	input := "d41d8cd98f00b204e9800998ecf8427e  ./MRCONSO.RRF\n" +
		"098f6bcd4621d373cade4e832627b4f6  NAMES.RRF.gz\n"
	sums, err := parseChecksums(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", sums["MRCONSO.RRF"])
	assert.Equal(t, "098f6bcd4621d373cade4e832627b4f6", sums["NAMES.RRF.gz"])
}

func TestScanReleaseVersion_MatchesVariousMarkers(t *testing.T) {
	assert.Equal(t, "20250901", scanReleaseVersion(strings.NewReader("Release Date: 20250901\n")))
	assert.Equal(t, "2025-09", scanReleaseVersion(strings.NewReader("Last update:   2025-09  \n")))
	assert.Equal(t, "Unknown", scanReleaseVersion(strings.NewReader("nothing relevant here\n")))
}
