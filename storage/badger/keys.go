package badger

import "fmt"

// Key prefixes for different data types
const (
	modelPrefix     = "encmod"
	modelInfoPrefix = "encinf"
)

// makeModelKey generates a key for a model by name.
func makeModelKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", modelPrefix, name))
}

// makeModelInfoKey generates a key for the listing index entry of a model.
func makeModelInfoKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", modelInfoPrefix, name))
}

// modelInfoIteratorPrefix is the prefix scanned when listing models.
func modelInfoIteratorPrefix() []byte {
	return []byte(modelInfoPrefix + ":")
}
