// assets/embed.go
//
// Embedded data files:
//   - challenges.txt: curated daily challenges, one formula per line.
//   - sql/*.sql:      schema migrations applied by internal/db.

package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed challenges.txt sql/*.sql
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// ChallengeList returns the embedded daily formulas, comments stripped.
func ChallengeList() ([]string, error) {
	return readLines("challenges.txt")
}
