package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/shopscrape"
	"github.com/fwojciec/shopscrape/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataExtractor_ExtractMetadata(t *testing.T) {
	t.Parallel()

	t.Run("reads title and description from meta tags", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head>
<title>Samsung Galaxy A15 | Shop</title>
<meta property="og:title" content="Samsung Galaxy A15 Dual SIM 128GB">
<meta name="description" content="Buy the Samsung Galaxy A15 online with fast delivery.">
</head>
<body>
<main>
<h1>Samsung Galaxy A15 Dual SIM 128GB</h1>
<p>The Galaxy A15 pairs a large display with a long lasting battery for everyday use.
It ships with expandable storage and a triple camera on the back.</p>
<p>Two year warranty is included with every purchase made through the official store.</p>
</main>
</body>
</html>`

		got, err := trafilatura.NewMetadataExtractor().ExtractMetadata(html)

		require.NoError(t, err)
		assert.Contains(t, got.Title, "Samsung Galaxy A15")
		assert.Equal(t, "Buy the Samsung Galaxy A15 online with fast delivery.", got.Description)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewMetadataExtractor().ExtractMetadata("  ")

		assert.Equal(t, shopscrape.EINVALID, shopscrape.ErrorCode(err))
	})
}
