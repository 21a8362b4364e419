package model

// ConsumptionRecord is one row of the consumption ledger: whether a
// specific dose occurrence was taken. The key (UserID, MedicationID,
// Date, Time) is unique in the database and the table enforces it;
// the repository upsert relies on that constraint as its concurrency
// backstop. Records are created lazily the first time a client
// reports a state for the key, never pre-populated.
//
// Time is the occurrence's clock time in the same zero-padded
// "HH:mm" form the schedule generator emits, so ledger rows and
// generated occurrences join by string equality.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owner of the record.
//  MedicationID – medication the occurrence belongs to.
//  Date         – calendar day of the occurrence, "YYYY-MM-DD".
//  Time         – clock time of the occurrence, "HH:mm".
//  Consumed     – whether the dose was reported as taken.
//  CreatedAt    – unix milliseconds, set once on insert and never
//                 rewritten by later updates.
type ConsumptionRecord struct {
	ID           uint64 // consumption_records.id
	UserID       uint64 // consumption_records.user_id
	MedicationID uint64 // consumption_records.medication_id
	Date         string // consumption_records.date (DATE)
	Time         string // consumption_records.time (CHAR(5))
	Consumed     bool   // consumption_records.consumed
	CreatedAt    int64  // consumption_records.created_at (unix millis)
}
