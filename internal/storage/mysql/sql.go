package mysql

// Note: `text` is reserved; keep it quoted everywhere.

// LAST_INSERT_ID(id) makes LastInsertId() return the row id on both the
// insert and the duplicate-key path. COALESCE keeps the old value when the
// vendor resends the record without a date/raw payload. response_text is
// deliberately absent from the update list: sync never touches replies.
const upsertReviewSQL = `
INSERT INTO reviews
  (platform, external_id, reviewer_name, rating, ` + "`text`" + `, review_date, sentiment, raw)
VALUES
  (?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP), ?, ?)
ON DUPLICATE KEY UPDATE
  id            = LAST_INSERT_ID(id),
  reviewer_name = VALUES(reviewer_name),
  rating        = VALUES(rating),
  ` + "`text`" + `        = VALUES(` + "`text`" + `),
  review_date   = COALESCE(VALUES(review_date), reviews.review_date),
  sentiment     = COALESCE(VALUES(sentiment), reviews.sentiment),
  raw           = COALESCE(VALUES(raw), reviews.raw),
  updated_at    = CURRENT_TIMESTAMP
`

const selectReviewCols = `
SELECT
  id,
  platform,
  external_id,
  reviewer_name,
  rating,
  ` + "`text`" + `,
  review_date,
  sentiment,
  response_text,
  raw
FROM reviews
`

const getReviewSQL = selectReviewCols + ` WHERE id = ?`

const getReviewByKeySQL = selectReviewCols + ` WHERE platform = ? AND external_id = ?`

// setResponseSQL only matches rows without a reply; responses are
// write-once in this scope.
const setResponseSQL = `
UPDATE reviews
SET response_text = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND response_text IS NULL
`

const upsertWatermarkSQL = `
INSERT INTO sync_watermarks (platform, synced_at)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE synced_at = VALUES(synced_at)
`

const getWatermarkSQL = `
SELECT synced_at FROM sync_watermarks WHERE platform = ?
`
