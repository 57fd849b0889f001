package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for records persisted in the lookup file and the catalog.
// The wire order of struct fields is part of the artifact format and must
// not change between releases.
var (
	IDMUS           = idMUS{}
	PhoneticCodeMUS = phoneticCodeMUS{}
	ProductMUS      = productMUS{}
)

var stringSliceMUS = ord.NewSliceSer[string](ord.String)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type phoneticCodeMUS struct{}

func (s phoneticCodeMUS) Marshal(v PhoneticCode, bs []byte) (n int) {
	n = stringSliceMUS.Marshal(v.Primary, bs)
	n += stringSliceMUS.Marshal(v.Alternate, bs[n:])
	return n
}

func (s phoneticCodeMUS) Unmarshal(bs []byte) (v PhoneticCode, n int, err error) {
	v.Primary, n, err = stringSliceMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.Alternate, n1, err = stringSliceMUS.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (s phoneticCodeMUS) Size(v PhoneticCode) (size int) {
	return stringSliceMUS.Size(v.Primary) + stringSliceMUS.Size(v.Alternate)
}

func (s phoneticCodeMUS) Skip(bs []byte) (n int, err error) {
	n, err = stringSliceMUS.Skip(bs)
	if err != nil {
		return n, err
	}
	var n1 int
	n1, err = stringSliceMUS.Skip(bs[n:])
	n += n1
	return n, err
}

type productMUS struct{}

func (s productMUS) Marshal(v Product, bs []byte) (n int) {
	n = IDMUS.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Brand, bs[n:])
	n += ord.String.Marshal(v.Category, bs[n:])
	n += PhoneticCodeMUS.Marshal(v.Phonetic, bs[n:])
	return n
}

func (s productMUS) Unmarshal(bs []byte) (v Product, n int, err error) {
	v.ID, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Brand, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Category, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Phonetic, n1, err = PhoneticCodeMUS.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (s productMUS) Size(v Product) (size int) {
	size = IDMUS.Size(v.ID)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Brand)
	size += ord.String.Size(v.Category)
	size += PhoneticCodeMUS.Size(v.Phonetic)
	return size
}

func (s productMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return n, err
	}
	for i := 0; i < 3; i++ {
		n1, err := ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	n1, err := PhoneticCodeMUS.Skip(bs[n:])
	n += n1
	return n, err
}
