package algo_test

import (
	"container/heap"
	"testing"

	"github.com/ryckardox9/maxfield-app1/router/algo"
	"github.com/stretchr/testify/assert"
)

func TestPriorityQueue(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	heap.Push(&pq, &algo.Item{Value: 0, Priority: 130})
	heap.Push(&pq, &algo.Item{Value: 1, Priority: 45})
	heap.Push(&pq, &algo.Item{Value: 2, Priority: 260})
	heap.Push(&pq, &algo.Item{Value: 3, Priority: 45.5})

	item := heap.Pop(&pq).(*algo.Item)
	assert.Equal(t, 1, item.Value)
	assert.Equal(t, 45.0, item.Priority)
	item = heap.Pop(&pq).(*algo.Item)
	assert.Equal(t, 3, item.Value)
	item = heap.Pop(&pq).(*algo.Item)
	assert.Equal(t, 0, item.Value)
	item = heap.Pop(&pq).(*algo.Item)
	assert.Equal(t, 2, item.Value)
	assert.Equal(t, 0, pq.Len())
}

func TestPriorityQueueChangePriority(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	for i, p := range []float64{4, 3, 2, 1} {
		heap.Push(&pq, &algo.Item{Value: i, Priority: p})
	}

	// drop the priority of Value==0 below everything else
	for _, item := range pq {
		if item.Value == 0 {
			item.Priority = 0
			heap.Fix(&pq, item.Index)
		}
	}

	item := heap.Pop(&pq).(*algo.Item)
	assert.Equal(t, 0, item.Value)
	assert.Equal(t, 0.0, item.Priority)
	item = heap.Pop(&pq).(*algo.Item)
	assert.Equal(t, 3, item.Value)
	assert.Equal(t, 1.0, item.Priority)
}
