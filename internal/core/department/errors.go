package department

import "errors"

var (
	// ErrDepartmentNotFound は部署が存在しない場合に返却されます。
	ErrDepartmentNotFound = errors.New("department: not found")
	// ErrCodeAlreadyExists はコード重複時に返却されます。
	ErrCodeAlreadyExists = errors.New("department: code already exists")
	// ErrInvalidName は部署名が不正な場合に返却されます。
	ErrInvalidName = errors.New("department: invalid name")
	// ErrInvalidCode は部署コードが不正な場合に返却されます。
	ErrInvalidCode = errors.New("department: invalid code")
	// ErrInvalidStatus はステータスが不正な場合に返却されます。
	ErrInvalidStatus = errors.New("department: invalid status")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("department: invalid id")
	// ErrInvalidParent は親部署が存在しない場合に返却されます。
	ErrInvalidParent = errors.New("department: invalid parent")
	// ErrHierarchyCycle は親子関係が循環する場合に返却されます。
	ErrHierarchyCycle = errors.New("department: hierarchy cycle")
	// ErrHasChildren は子部署を持つ部署を削除しようとした場合に返却されます。
	ErrHasChildren = errors.New("department: has child departments")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("department: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("department: invalid page token")
)
