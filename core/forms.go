package core

import (
	"log"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	FormContact = "contact"
	FormJoin    = "join"
)

var confirmations = map[string]string{
	FormContact: "Thank you %s! We have received your message and will get back to you soon.",
	FormJoin:    "Thank you %s! Your application has been submitted successfully. We will review it and get back to you soon.",
}

// ContactSubmission holds the contact form fields. None are required.
type ContactSubmission struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Phone   string `form:"phone"`
	Subject string `form:"subject"`
	Message string `form:"message"`
}

func (s ContactSubmission) Confirmation() Message {
	return Message{Level: LevelSuccess, Form: FormContact, Name: s.Name}
}

// JoinApplication holds the careers form fields. None are required.
type JoinApplication struct {
	FirstName   string  `form:"first_name"`
	LastName    string  `form:"last_name"`
	Email       string  `form:"email"`
	Phone       string  `form:"phone"`
	Position    string  `form:"position"`
	Experience  string  `form:"experience"`
	LinkedIn    string  `form:"linkedin"`
	Portfolio   string  `form:"portfolio"`
	CoverLetter string  `form:"cover_letter"`
	Resume      *Upload `form:"-"`
}

func (a JoinApplication) Confirmation() Message {
	return Message{Level: LevelSuccess, Form: FormJoin, Name: a.FirstName}
}

// Upload describes a file that was read from the request and dropped.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	OnDisk      bool
}

func (r *Router) contactSubmit(c *gin.Context) {
	var sub ContactSubmission
	if err := r.bind(c, &sub); err != nil {
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	if r.config.DebugLogs {
		log.Printf("contact: submission received (name=%t email=%t phone=%t subject=%t message=%t)",
			sub.Name != "", sub.Email != "", sub.Phone != "", sub.Subject != "", sub.Message != "")
	}

	r.acknowledge(c, contactPage, sub.Confirmation())
}

func (r *Router) joinSubmit(c *gin.Context) {
	var app JoinApplication
	if err := r.bind(c, &app); err != nil {
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}
	if form := c.Request.MultipartForm; form != nil {
		defer form.RemoveAll()
	}
	app.Resume = readUpload(c, "resume")

	if r.config.DebugLogs {
		if app.Resume != nil {
			log.Printf("join: application received for %q with resume %q (%d bytes, %s, on disk: %t)",
				app.Position, app.Resume.Filename, app.Resume.Size, app.Resume.ContentType, app.Resume.OnDisk)
		} else {
			log.Printf("join: application received for %q without resume", app.Position)
		}
	}

	r.acknowledge(c, joinPage, app.Confirmation())
}

// bind parses multipart bodies with the engine's MaxMultipartMemory before
// handing off to gin, whose multipart binding reuses an already parsed form.
func (r *Router) bind(c *gin.Context, obj interface{}) error {
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if err := c.Request.ParseMultipartForm(r.engine.MaxMultipartMemory); err != nil {
			return err
		}
	}
	return c.ShouldBind(obj)
}

// readUpload opens the named file part and sniffs its type. The contents
// are not kept; a missing or unreadable part returns nil.
func readUpload(c *gin.Context, field string) *Upload {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}

	upload := &Upload{Filename: fh.Filename, Size: fh.Size}

	f, err := fh.Open()
	if err != nil {
		log.Printf("upload: open %s: %v", field, err)
		return upload
	}
	defer f.Close()

	_, upload.OnDisk = f.(*os.File)
	if mt, err := mimetype.DetectReader(f); err == nil {
		upload.ContentType = mt.String()
	}

	return upload
}

// acknowledge answers a form POST. Script clients sending
// X-Requested-With get JSON. Browsers get a flash message and a redirect
// back to the form; when the message cannot be stored in the cookie the
// form page is rendered with it directly.
func (r *Router) acknowledge(c *gin.Context, page Page, msg Message) {
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		c.JSON(http.StatusOK, gin.H{"status": msg.Level, "message": msg.Text()})
		return
	}

	if err := r.messenger.Add(c.Writer, c.Request, msg); err != nil {
		log.Printf("flash: add on %s, rendering inline: %v", page.Path, err)
		r.respond(c, page, []Message{msg}, false)
		return
	}
	c.Redirect(http.StatusFound, page.Path)
}
