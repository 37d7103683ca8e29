// Package backends registers every virtual controller backend built for
// the target platform.
package backends

import (
	_ "github.com/Alia5/mogaserial/internal/vpad/scp"
	_ "github.com/Alia5/mogaserial/internal/vpad/viiper"
)
