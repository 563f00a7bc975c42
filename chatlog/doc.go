// Package chatlog persists scripted conversations as line-delimited JSON
// suitable for training data pipelines.
//
// A Recorder receives two streams per conversation session: full records
// (the speaking agent's entire history after its turn) and turn records (the
// user/assistant pair just produced). FileRecorder appends both streams to a
// pair of timestamp-named .jsonl files, one line per record, flushed before
// the next turn begins. MemoryRecorder keeps records in memory for tests and
// inspection.
package chatlog
