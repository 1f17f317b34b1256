package session

// Per-room key layout. Each key carries its own expiry horizon, refreshed on
// relevant writes; the five records are never updated as an atomic group.
const (
	roomKeyPrefix   = "trivia:room:"
	stateKeyPrefix  = "trivia:state:"
	leaseKeyPrefix  = "trivia:lease:"
	seqKeyPrefix    = "trivia:seq:"
	answerKeyPrefix = "trivia:answer:"
)

func keyRoom(code string) string   { return roomKeyPrefix + code }
func keyState(code string) string  { return stateKeyPrefix + code }
func keyLease(code string) string  { return leaseKeyPrefix + code }
func keySeq(code string) string    { return seqKeyPrefix + code }
func keyAnswer(code string) string { return answerKeyPrefix + code }
