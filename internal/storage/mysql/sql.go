package mysql

// The aggregate is stored whole in hotels.document; the scalar columns
// beside it only serve listing and filtering.

const insertHotelSQL = `
INSERT INTO hotels
  (id, name, is_template, template_name, document, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const replaceHotelSQL = `
UPDATE hotels SET
  name          = ?,
  is_template   = ?,
  template_name = ?,
  document      = ?,
  updated_at    = ?
WHERE id = ?
`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

const hotelExistsSQL = `SELECT 1 FROM hotels WHERE id = ?`

const getHotelSQL = `
SELECT document, created_at, updated_at
FROM hotels
WHERE id = ?
`

// listHotelsSQL is completed by the repo with an optional template filter
// and LIMIT.
const listHotelsSQL = `
SELECT id, name, is_template, template_name, updated_at
FROM hotels`

const listHotelsOrder = `
ORDER BY updated_at DESC, id`

// -----------------------------------------------------------------------------
// TEMPLATES
// -----------------------------------------------------------------------------

const insertTemplateSQL = `
INSERT INTO templates
  (id, kind, hotel_id, name, description, data, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const listTemplatesSQL = `
SELECT id, kind, hotel_id, name, description, data, created_at
FROM templates
WHERE kind = ? AND (? = '' OR hotel_id = ?)
ORDER BY created_at DESC, id DESC
`

const deleteTemplateSQL = `DELETE FROM templates WHERE id = ?`

// -----------------------------------------------------------------------------
// CLIENT ERRORS
// -----------------------------------------------------------------------------

// INSERT IGNORE skips rows whose dedupe_key already exists.
const insertErrorSQL = `
INSERT IGNORE INTO client_errors
  (dedupe_key, session_id, type, message, stack, url, client_ts)
VALUES (?,?,?,?,?,?,?)
`
