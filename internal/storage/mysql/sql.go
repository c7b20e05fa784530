package mysql

// A booking is one row; the itinerary and optional transport ride along as
// JSON columns, so creation is a single atomic INSERT (no partial writes).
const insertBookingSQL = `
INSERT INTO bookings
  (id, owner, destination_id, guests, start_date, end_date, day_plans, transport, total_cost, status, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectBookingCols = `
  id, owner, destination_id, guests, start_date, end_date, day_plans, transport, total_cost, status, created_at
`

const getBookingSQL = `
SELECT ` + selectBookingCols + `
FROM bookings
WHERE id = ?
`

// Newest first; aligns with the index on (owner, created_at, id).
const listByOwnerSQL = `
SELECT ` + selectBookingCols + `
FROM bookings
WHERE owner = ?
ORDER BY created_at DESC, id DESC
`

const listAllSQL = `
SELECT ` + selectBookingCols + `
FROM bookings
ORDER BY created_at DESC, id DESC
`

// Last-writer-wins on concurrent updates to the same id; no version column.
const updateStatusSQL = `
UPDATE bookings SET status = ? WHERE id = ?
`

const deleteBookingSQL = `
DELETE FROM bookings WHERE id = ?
`
