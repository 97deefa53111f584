// Package loader contains the staging-to-fact load and re-enrichment use cases.
package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

const fingerprintDateLayout = "2006-01-02"

// Fingerprint is the content hash that identifies a transaction for a user.
// Inputs: user, date, absolute amount with two decimals, direction, description,
// normalized merchant and account reference. Each field is length-prefixed so free text
// containing separators cannot shift field boundaries.
func Fingerprint(row *entity.StagingRow, normalizedMerchant string) string {
	parts := []string{
		row.UserID.String(),
		row.TxnDate.Format(fingerprintDateLayout),
		row.Amount.Abs().StringFixed(2),
		string(row.Direction),
		strings.TrimSpace(row.DescriptionRaw),
		normalizedMerchant,
		strings.TrimSpace(row.AccountRef),
	}
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{':'})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
