package fetch

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPostcode(t *testing.T) {
	valid := []string{"SM4 5DX", "SM45DX", "sm4 5dx", "E1 6AN", "EC1A 1BB", " SW1A 2AA "}
	for _, pc := range valid {
		assert.True(t, ValidPostcode(pc), pc)
	}

	invalid := []string{"", "SM4", "12345", "SM4 5DXX", "NOT A CODE"}
	for _, pc := range invalid {
		assert.False(t, ValidPostcode(pc), pc)
	}
}

func TestValidUPRN(t *testing.T) {
	assert.True(t, ValidUPRN("4259013"))
	assert.True(t, ValidUPRN("100023336956"))
	assert.False(t, ValidUPRN(""))
	assert.False(t, ValidUPRN("4259O13"))
	assert.False(t, ValidUPRN("1234567890123"))
}

func TestPickAddress(t *testing.T) {
	page := `<html><body>
<form>
  <select id="address" name="address">
    <option value="">Select an address</option>
    <option value="---">---</option>
    <option value="100023336956">2 EXAMPLE ROAD, MORDEN, SM4 5DX</option>
    <option value="100023336957">4 EXAMPLE ROAD, MORDEN, SM4 5DX</option>
  </select>
</form>
</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	addr, ok := pickAddress(doc)
	require.True(t, ok)
	assert.Equal(t, "100023336956", addr.UPRN)
	assert.Equal(t, "2 Example Road, Morden, Sm4 5Dx", addr.Label)
}

func TestPickAddressNoOptions(t *testing.T) {
	page := `<html><body><p>No addresses match that postcode.</p></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	_, ok := pickAddress(doc)
	assert.False(t, ok)
}
