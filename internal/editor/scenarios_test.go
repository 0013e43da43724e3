package editor_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dmitrijs2005/gophsite/internal/activity"
	"github.com/dmitrijs2005/gophsite/internal/carousel"
	"github.com/dmitrijs2005/gophsite/internal/changefeed"
	"github.com/dmitrijs2005/gophsite/internal/collection"
	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/editor"
	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/models"
	"github.com/dmitrijs2005/gophsite/internal/remote"
)

const testimonials = "testimonials"

func quote(r models.Record) (string, error) {
	return r.Fields.String("quote"), nil
}

var _ = Describe("Live editing of a collection", func() {
	var (
		ctx        context.Context
		cancel     context.CancelFunc
		store      *remote.MemoryStore
		feed       *changefeed.Channel
		log        *activity.Log
		controller *collection.Controller[string]
		ed         *editor.Editor
	)

	yes := func(string) bool { return true }

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		store = remote.NewMemoryStore()
		feed = changefeed.New(store, logging.Nop())
		go func() { _ = feed.Run(ctx) }()
		Eventually(feed.Connected).Should(BeTrue())

		log = activity.New(store, logging.Nop(), 16)
		go func() { _ = log.Run(ctx) }()

		controller = collection.New(testimonials, store, feed, quote,
			collection.WithCoalesceWindow(10*time.Millisecond),
			collection.WithQuery(remote.Query{Order: []remote.Order{{Field: "created_at"}}}),
		)
		ed = editor.New(editor.Schema{
			Collection: testimonials,
			Required:   []string{"author", "quote"},
		}, store, log, logging.Nop())
	})

	AfterEach(func() {
		controller.Stop()
		cancel()
	})

	startWith := func(quotes ...string) {
		for _, q := range quotes {
			_, err := store.Insert(ctx, testimonials, models.Fields{"author": "A", "quote": q})
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(controller.Start(ctx)).To(Succeed())
		Eventually(func() int { return len(controller.View().Records) }).Should(Equal(len(quotes)))
	}

	Context("creating a record", func() {
		It("shows the record after the change event, not before", func() {
			startWith()

			Expect(ed.BeginCreate(ctx, nil)).To(Succeed())
			Expect(ed.UpdateField("author", "Jane")).To(Succeed())
			Expect(ed.UpdateField("quote", "Great work")).To(Succeed())
			Expect(controller.View().Records).To(BeEmpty())

			id, err := ed.Submit(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ed.Session().Mode).To(Equal(editor.ModeNone))

			Eventually(func() []string { return controller.View().IDs() }).Should(Equal([]string{id}))
			Expect(controller.View().Records[0].Value).To(Equal("Great work"))

			Eventually(func() []models.Activity {
				entries, _ := log.Recent(ctx, 10)
				return entries
			}).Should(ContainElement(HaveField("EntityID", id)))
		})

		It("keeps the draft and sends nothing when validation fails", func() {
			startWith("existing")

			Expect(ed.BeginCreate(ctx, models.Fields{"author": "Jane"})).To(Succeed())
			_, err := ed.Submit(ctx)

			var verr *common.ValidationError
			Expect(err).To(BeAssignableToTypeOf(verr))
			Expect(ed.Session().Draft).To(HaveKeyWithValue("author", "Jane"))
			Consistently(func() int { return len(controller.View().Records) }, 50*time.Millisecond).Should(Equal(1))
		})
	})

	Context("deleting the record under the open draft", func() {
		It("removes it from the view and closes the editor", func() {
			startWith("one", "two", "three")
			target := controller.View().Records[1]

			Expect(ed.BeginEdit(ctx, target.Record)).To(Succeed())
			Expect(ed.UpdateField("quote", "edited")).To(Succeed())

			Expect(ed.Remove(ctx, target.ID, yes)).To(Succeed())
			Expect(ed.Session().Mode).To(Equal(editor.ModeNone))

			Eventually(func() []string { return controller.View().IDs() }).ShouldNot(ContainElement(target.ID))
			Expect(controller.View().Records).To(HaveLen(2))
		})

		It("reports a conflict when another session deleted it first", func() {
			startWith("one")
			target := controller.View().Records[0]

			Expect(ed.BeginEdit(ctx, target.Record)).To(Succeed())
			Expect(store.Delete(ctx, testimonials, target.ID)).To(Succeed())
			Eventually(func() []collection.Item[string] { return controller.View().Records }).Should(BeEmpty())

			_, err := ed.Submit(ctx)
			Expect(err).To(MatchError(common.ErrRecordGone))
			Expect(ed.Session().Mode).To(Equal(editor.ModeEditing))
			Expect(ed.Session().Draft).To(HaveKeyWithValue("quote", "one"))
		})
	})

	Context("a rotating view over a shrinking collection", func() {
		It("renders empty without panicking when every record disappears", func() {
			startWith("a", "b", "c", "d", "e")
			rotator := carousel.NewRotator[string](controller, time.Hour)
			cursor := rotator.Cursor()
			Expect(cursor).NotTo(BeNil())
			for i := 0; i < 3; i++ {
				cursor.Next()
			}
			Expect(cursor.State().Index).To(Equal(3))

			for _, id := range controller.View().IDs() {
				Expect(store.Delete(ctx, testimonials, id)).To(Succeed())
			}

			Eventually(func() bool {
				_, _, ok := rotator.Current()
				return ok
			}).Should(BeFalse())
			st, _, _ := rotator.Current()
			Expect(st.Index).To(Equal(0))
			Expect(st.Total).To(Equal(0))
		})
	})
})
