package main

import "time"

// answerRecord is one submission for the question currently open. The player
// name is captured at append time so a record from a connection that later
// drops can still be named in the winner broadcast.
type answerRecord struct {
	connID  string
	name    string
	value   string
	elapsed time.Duration
}

// answerLog collects submissions for the current question, in arrival order.
// Only the first record per connection is kept; repeats are dropped. The log
// is discarded wholesale when the next question opens.
type answerLog struct {
	records []answerRecord
	seen    map[string]bool
}

func newAnswerLog() *answerLog {
	return &answerLog{
		seen: make(map[string]bool),
	}
}

func (l *answerLog) append(rec answerRecord) bool {
	if l.seen[rec.connID] {
		return false
	}

	l.seen[rec.connID] = true
	l.records = append(l.records, rec)

	return true
}

func (l *answerLog) size() int {
	return len(l.records)
}

// roundResult describes the score deltas for one evaluated question.
type roundResult struct {
	deltas     map[string]int
	winnerID   string
	winnerName string
	hasWinner  bool
}

// scoreRound is a pure function over the closed answer log: every record
// matching the correct answer (exact, case-sensitive) earns +1, and the
// fastest of those earns one more and is the round winner. Ties on elapsed
// time go to the earlier submission.
func scoreRound(q Question, records []answerRecord) roundResult {
	result := roundResult{
		deltas: make(map[string]int),
	}

	fastest := -1
	for i, rec := range records {
		if rec.value != q.Correct {
			continue
		}

		result.deltas[rec.connID]++

		if fastest == -1 || rec.elapsed < records[fastest].elapsed {
			fastest = i
		}
	}

	if fastest >= 0 {
		result.deltas[records[fastest].connID]++
		result.winnerID = records[fastest].connID
		result.winnerName = records[fastest].name
		result.hasWinner = true
	}

	return result
}
