package register

import "github.com/aleister1102/grcdigest/internal/models"

// ErrRecordCountMismatch means the paged fetch did not deliver exactly totalCount distinct records.
var ErrRecordCountMismatch = models.ErrRecordCountMismatch
