package catalog

// Level is a sugar or ice intensity chosen per cart line. Only the fixed
// set of values below is accepted.
type Level string

const (
	LevelNone    Level = "0%"
	LevelLight   Level = "30%"
	LevelHalf    Level = "50%"
	LevelMost    Level = "70%"
	LevelFull    Level = "100%"
	DefaultLevel       = LevelFull
)

// Levels lists every accepted level in menu order.
var Levels = []Level{LevelNone, LevelLight, LevelHalf, LevelMost, LevelFull}

// Valid reports whether l is one of the accepted levels.
func (l Level) Valid() bool {
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}

// LevelOrDefault returns l when it is a valid level, or the default (100%)
// when it is empty or unknown.
func LevelOrDefault(s string) Level {
	l := Level(s)
	if l.Valid() {
		return l
	}
	return DefaultLevel
}
