package bpe

// segment is a run of Encode input: either literal text or one recognized
// special token.
type segment struct {
	text    string
	id      int
	special bool
}

// splitSpecials cuts text into plain segments and recognized special tokens.
// Matching is leftmost and non-overlapping; when several tokens match at the
// same position the longest wins.
func splitSpecials(text string, allowed map[string]int) []segment {
	if len(allowed) == 0 {
		if text == "" {
			return nil
		}
		return []segment{{text: text}}
	}
	trie := newSpecialTrie(allowed)
	var segs []segment
	start := 0
	for i := 0; i < len(text); {
		n, id := trie.longestMatch(text[i:])
		if n == 0 {
			i++
			continue
		}
		if i > start {
			segs = append(segs, segment{text: text[start:i]})
		}
		segs = append(segs, segment{id: id, special: true})
		i += n
		start = i
	}
	if start < len(text) {
		segs = append(segs, segment{text: text[start:]})
	}
	return segs
}

// specialTrie is a byte trie over the recognized special-token strings. It
// is built per Encode call, so encoding never reads shared mutable state.
type specialTrie struct {
	root *specialTrieNode
}

type specialTrieNode struct {
	children [256]*specialTrieNode // direct array for O(1) child lookup
	id       int
	terminal bool
}

func newSpecialTrie(tokens map[string]int) *specialTrie {
	t := &specialTrie{root: &specialTrieNode{id: -1}}
	for lit, id := range tokens {
		t.insert(lit, id)
	}
	return t
}

func (t *specialTrie) insert(lit string, id int) {
	node := t.root
	for i := 0; i < len(lit); i++ {
		b := lit[i]
		if node.children[b] == nil {
			node.children[b] = &specialTrieNode{id: -1}
		}
		node = node.children[b]
	}
	node.id = id
	node.terminal = true
}

// longestMatch returns the length and id of the longest registered token
// prefixing text, or (0, -1) when none matches.
func (t *specialTrie) longestMatch(text string) (int, int) {
	node := t.root
	bestLen, bestID := 0, -1
	for i := 0; i < len(text); i++ {
		node = node.children[text[i]]
		if node == nil {
			break
		}
		if node.terminal {
			bestLen, bestID = i+1, node.id
		}
	}
	return bestLen, bestID
}
