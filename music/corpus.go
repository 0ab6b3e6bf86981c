package music

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/schollz/jsonstore"
	log "github.com/sirupsen/logrus"
)

// Step is one resolved event of training material, as a score compiler
// emits it: the chord in force, the pitch relative to the tonic and the
// rhythmic category. Rests keep their duration but carry no pitch.
type Step struct {
	Chord    int  `json:"chord"`
	Pitch    int  `json:"pitch"`
	Category int  `json:"category"`
	Rest     bool `json:"rest,omitempty"`
}

// Corpus is a file of named training phrases.
type Corpus struct {
	store    *jsonstore.JSONStore
	filename string
}

// OpenCorpus opens the corpus stored in filename. A missing file gives an
// empty corpus that Save will create.
func OpenCorpus(filename string) (c *Corpus, err error) {
	logger := log.WithFields(log.Fields{
		"function": "Corpus.Open",
	})
	c = &Corpus{filename: filename}
	c.store, err = jsonstore.Open(filename)
	if err == nil {
		logger.Debugf("loaded %d phrases from %s", len(c.store.Keys()), filename)
		return
	}
	if _, statErr := os.Stat(filename); os.IsNotExist(statErr) {
		logger.Infof("%s does not exist, starting a new corpus", filename)
		c.store = new(jsonstore.JSONStore)
		err = nil
		return
	}
	err = errors.Wrapf(err, "opening corpus %s", filename)
	c = nil
	return
}

// Names returns the phrase names in sorted order.
func (c *Corpus) Names() []string {
	names := c.store.Keys()
	sort.Strings(names)
	return names
}

// Phrase returns the steps stored under name.
func (c *Corpus) Phrase(name string) (steps []Step, err error) {
	if err = c.store.Get(name, &steps); err != nil {
		err = errors.Wrapf(err, "phrase %q", name)
	}
	return
}

// SetPhrase stores steps under name, replacing any previous phrase.
func (c *Corpus) SetPhrase(name string, steps []Step) error {
	return c.store.Set(name, steps)
}

// Save writes the corpus back to its file.
func (c *Corpus) Save() error {
	return jsonstore.Save(c.store, c.filename)
}
