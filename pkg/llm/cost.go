package llm

import (
	"unicode/utf8"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
)

// tokensPerUnit is the token count the price table is quoted in.
const tokensPerUnit = 1e6

// EstimateCost approximates call cost from character counts. Tokens are
// estimated as characters / charsPerToken, prices are per million tokens,
// and the result is converted with rate.
func EstimateCost(input, output string, price config.Price, charsPerToken, rate float64) float64 {
	if charsPerToken <= 0 {
		return 0
	}
	inTokens := float64(utf8.RuneCountInString(input)) / charsPerToken
	outTokens := float64(utf8.RuneCountInString(output)) / charsPerToken
	return (inTokens/tokensPerUnit*price.Input + outTokens/tokensPerUnit*price.Output) * rate
}
