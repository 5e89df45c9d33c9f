package rtcore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flier/corert/pkg/rtcore"
)

type listItem struct {
	link  rtcore.ListNode
	value int
}

func (i *listItem) Link() *rtcore.ListNode { return &i.link }

func TestListOrdering(t *testing.T) {
	bank := rtcore.NewBank[listItem]()
	list := rtcore.NewList[listItem, *listItem](bank)

	a := bank.Push(listItem{value: 1})
	b := bank.Push(listItem{value: 2})
	c := bank.Push(listItem{value: 3})

	list.PushBack(a)
	list.PushBack(b)
	list.PushBack(c)

	require.Equal(t, a, list.Head())
	require.Equal(t, c, list.Tail())
	require.Equal(t, b, list.Next(a))
	require.Equal(t, a, list.Prev(b))
	require.Equal(t, rtcore.NilIndex, list.Next(c))
	require.Equal(t, rtcore.NilIndex, list.Prev(a))

	list.Erase(b)
	require.Equal(t, c, list.Next(a))
	require.Equal(t, a, list.Prev(c))

	d := bank.Push(listItem{value: 4})
	list.InsertAfter(rtcore.NilIndex, d)
	require.Equal(t, d, list.Head())
	require.Equal(t, a, list.Next(d))
}
