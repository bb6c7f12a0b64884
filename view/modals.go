package view

import (
	"context"
	"fmt"
)

// ModalID names one of the page's modal dialogs
type ModalID string

const (
	ModalAdd      ModalID = "addModal"
	ModalEdit     ModalID = "editModal"
	ModalAddMonth ModalID = "addMonthModal"
	ModalBulkAdd  ModalID = "bulkAddModal"
	ModalUpload   ModalID = "uploadModal"
	ModalProfile  ModalID = "profileModal"
	ModalEditInfo ModalID = "editProfileModal"
)

// modalHooks are the state resets attached to a modal. reset and teardown
// run with the controller lock held; load runs after it is released.
type modalHooks struct {
	reset    func(c *Controller)
	load     func(ctx context.Context, c *Controller)
	teardown func(c *Controller)
}

var modals = map[ModalID]modalHooks{
	ModalAdd:  {},
	ModalEdit: {},
	ModalAddMonth: {
		reset: func(c *Controller) {
			c.sets[SetAddMonths].Clear()
			c.renderMonthSet(SetAddMonths)
		},
		teardown: func(c *Controller) {
			c.sets[SetAddMonths].Clear()
		},
	},
	ModalBulkAdd: {
		reset: func(c *Controller) {
			c.sets[SetBulkMonths].Clear()
			c.sets[SetStudents].Clear()
			c.suggestQuery = ""
			c.renderMonthSet(SetBulkMonths)
			c.renderStudents()
			c.render.PastePreview(0)
		},
		load: func(ctx context.Context, c *Controller) {
			c.LoadStudents(ctx)
		},
		teardown: func(c *Controller) {
			c.sets[SetBulkMonths].Clear()
			c.sets[SetStudents].Clear()
			c.suggestQuery = ""
		},
	},
	ModalUpload: {},
	ModalProfile: {
		teardown: func(c *Controller) {
			c.profile = nil
		},
	},
	ModalEditInfo: {},
}

func lookupModal(id ModalID) (modalHooks, error) {
	h, ok := modals[id]
	if !ok {
		return modalHooks{}, fmt.Errorf("unknown modal %q", id)
	}
	return h, nil
}
