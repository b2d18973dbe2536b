package engine

import (
	"fmt"

	"tsu-battle/internal/pkg/xerrors"
)

// xpanic 把 recover 到的值包成带错误码的领域错误
func xpanic(r interface{}) error {
	if err, ok := r.(error); ok {
		return xerrors.Wrap(err, xerrors.CodeInternalError, "战斗结算 panic")
	}
	return xerrors.New(xerrors.CodeInternalError, fmt.Sprintf("战斗结算 panic: %v", r))
}
