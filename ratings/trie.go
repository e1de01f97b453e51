// Package ratings looks up professor ratings on a RateMyProfessors-style
// service and indexes the professor names recovered from a parsed
// schedule.
package ratings

import "sort"

// TrieNode is one character of the name index. Children are keyed by a
// single character so the structure serializes to the same JSON shape it
// always had on disk.
type TrieNode struct {
	Children map[string]*TrieNode `json:"children,omitempty"`
	Word     string               `json:"word,omitempty"`
}

// Trie indexes professor names for prefix enumeration and membership
// checks.
type Trie struct {
	Root *TrieNode `json:"root"`
}

// NewTrie returns an empty name index.
func NewTrie() *Trie {
	return &Trie{Root: &TrieNode{}}
}

// Add inserts a name.
func (t *Trie) Add(word string) {
	node := t.Root
	for _, r := range word {
		key := string(r)
		if node.Children == nil {
			node.Children = make(map[string]*TrieNode)
		}
		child, ok := node.Children[key]
		if !ok {
			child = &TrieNode{}
			node.Children[key] = child
		}
		node = child
	}
	node.Word = word
}

// Contains reports whether word was added as a complete name, not merely
// as a prefix of one.
func (t *Trie) Contains(word string) bool {
	node := t.walk(word)
	return node != nil && node.Word == word
}

// Words returns every indexed name under prefix, sorted.
func (t *Trie) Words(prefix string) []string {
	node := t.walk(prefix)
	if node == nil {
		return nil
	}

	var words []string
	var collect func(*TrieNode)
	collect = func(n *TrieNode) {
		if n.Word != "" {
			words = append(words, n.Word)
		}
		for _, child := range n.Children {
			collect(child)
		}
	}
	collect(node)

	sort.Strings(words)
	return words
}

func (t *Trie) walk(prefix string) *TrieNode {
	node := t.Root
	for _, r := range prefix {
		child, ok := node.Children[string(r)]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// KnownNames adapts the trie to the parser's NameClassifier capability: a
// candidate is a professor name if it was seen in a previous parse.
type KnownNames struct {
	Trie *Trie
}

func (k KnownNames) Classify(candidate string) bool {
	return k.Trie.Contains(candidate)
}
