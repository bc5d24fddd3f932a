/*
 * file: roman.go
 * package: nameserver
 * description:
 *     A simplified, subtractive-free Roman numeral encoding used to
 *     de-duplicate player names: repeatedly appends the largest fitting
 *     symbol, so 4 is "IIII" and 9 is "VIIII" rather than "IV"/"IX".
 */

package nameserver

var symbols = []struct {
	value  int
	letter string
}{
	{1000, "M"},
	{500, "D"},
	{100, "C"},
	{50, "L"},
	{10, "X"},
	{5, "V"},
	{1, "I"},
}

// roman renders n (n >= 1) as a subtractive-free Roman numeral.
func roman(n int) string {
	out := make([]byte, 0, n)
	for _, s := range symbols {
		for n >= s.value {
			out = append(out, s.letter...)
			n -= s.value
		}
	}
	return string(out)
}
