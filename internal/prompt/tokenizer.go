package prompt

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var modelCodec = sync.OnceValues(func() (tokenizer.Codec, error) {
	return tokenizer.Get(tokenizer.O200kBase)
})

// CountModelTokens counts text with the o200k_base BPE encoding. It is a
// reporting aid for dense output; budgeting always uses CountTokens.
func CountModelTokens(text string) (int, error) {
	codec, err := modelCodec()
	if err != nil {
		return 0, err
	}
	return codec.Count(text)
}
