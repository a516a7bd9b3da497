package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10 // cap for corpus entries

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addGrammarSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".cook" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

// addGrammarSeeds hands the engine one sample per grammar construct so
// coverage feedback has somewhere to start mutating from.
func addGrammarSeeds(f *testing.F) {
	seeds := []string{
		"",
		"Mix everything together.\n",
		">> servings: 4\n",
		">> [mode]: components\n",
		">> [duplicate]: reference\n",
		"== Dough ==\n",
		"= Unterminated section\n",
		"@flour{200%g}\n",
		"@olive oil{2%tbsp} and @salt\n",
		"@&flour{}\n",
		"@?-secret ingredient{}\n",
		"@+more flour{100%g}\n",
		"@&(~1)water{}\n",
		"@&(=2)dough{}\n",
		"@ingredient|alias{1}(toasted)\n",
		"#pot{}\n#large bowl\n",
		"~{10%minutes}\n",
		"~oven{180%°C}\n",
		"@milk{1|2|3%cups}\n",
		"@rice{2*%cups}\n",
		"@sugar{1/2%cup}\n",
		"@water{2-3%l}\n",
		"-- line comment\n",
		"[- block comment -]\n",
		"[- unterminated block\n",
		"\\@not an ingredient\n",
		"> just a text paragraph\n",
		"---\ntitle: Pancakes\ntags: [breakfast]\n---\n\nMix @flour{}.\n",
		"---\n: bad yaml\n---\n",
		"@{}\n#{}\n~{}\n",
		"@@@@@@@@",
		"{{{{}}}}",
		"@a{%%%%}",
		"@x{1%g|2%kg}",
		"~t{}\n~t{text}\n",
		"== A ==\nstep one\n\n== B ==\nstep two\n",
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
