package blueprint_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/villas/pkg/blueprint"
)

func ExampleBuild() {
	src := `
name: cellar
width: 5
height: 3
rooms:
  - name: vault
    at: [0, 1]
    drawing: |
      D--
      .--
`
	bp, err := blueprint.Decode([]byte(src), blueprint.FormatYAML)
	if err != nil {
		panic(err)
	}
	p, err := blueprint.Build(bp)
	if err != nil {
		panic(err)
	}
	for _, line := range strings.Split(p.Grid().Draw(), "\n") {
		fmt.Printf("|%s|\n", line)
	}
	// Output:
	// | D-- |
	// |  -- |
	// |     |
}
