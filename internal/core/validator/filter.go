package validator

import (
	"fmt"

	"github.com/dep2p/go-nostrkit/pkg/types"
)

// ValidateFilter 校验订阅过滤器
//
// 失败时返回包装 types.ErrStructuralInvalid 的错误。
func ValidateFilter(f *types.Filter) error {
	if f == nil {
		return fmt.Errorf("%w: filter is nil", types.ErrStructuralInvalid)
	}

	for _, id := range f.IDs {
		if !IsHex(id, idHexLen) {
			return fmt.Errorf("%w: filter id %q must be %d hex characters", types.ErrStructuralInvalid, id, idHexLen)
		}
	}
	for _, author := range f.Authors {
		if !IsHex(author, pubkeyHexLen) {
			return fmt.Errorf("%w: filter author %q must be %d hex characters", types.ErrStructuralInvalid, author, pubkeyHexLen)
		}
	}
	for _, kind := range f.Kinds {
		if kind < 0 {
			return fmt.Errorf("%w: filter kind %d is negative", types.ErrStructuralInvalid, kind)
		}
	}
	for name := range f.Tags {
		if len(name) != 1 {
			return fmt.Errorf("%w: tag filter %q must be a single letter", types.ErrStructuralInvalid, name)
		}
	}
	if f.Since != nil && f.Until != nil && *f.Since > *f.Until {
		return fmt.Errorf("%w: since %d is after until %d", types.ErrStructuralInvalid, *f.Since, *f.Until)
	}
	if f.Limit != nil && *f.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", types.ErrStructuralInvalid, *f.Limit)
	}
	return nil
}
