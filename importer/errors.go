package importer

import "errors"

var (
	// ErrHeaderMismatch заголовок файла не совпадает с ожидаемым
	ErrHeaderMismatch = errors.New("header does not match expected columns")
	// ErrNoData в файле нет пригодных строк
	ErrNoData = errors.New("no data in file")
	// ErrImportCancelled пользователь отказался отбрасывать неполные строки
	ErrImportCancelled = errors.New("import cancelled")
	// ErrUnsupportedFormat расширение файла не поддерживается
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
