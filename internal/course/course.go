package course

import "time"

// Course is the catalogue entry managed by admins.
type Course struct {
	ID             string    `json:"_id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	Description    string    `json:"description" bson:"description"`
	Price          float64   `json:"price" bson:"price"`
	EstimatedPrice float64   `json:"estimatedPrice,omitempty" bson:"estimatedPrice,omitempty"`
	Tags           string    `json:"tags" bson:"tags"`
	Level          string    `json:"level" bson:"level"`
	DemoURL        string    `json:"demoUrl" bson:"demoUrl"`
	Benefits       []Item    `json:"benefits" bson:"benefits"`
	Prerequisites  []Item    `json:"prerequisites" bson:"prerequisites"`
	Sections       []Section `json:"courseData" bson:"courseData"`
	Reviews        []Review  `json:"reviews" bson:"reviews"`
	Ratings        float64   `json:"ratings" bson:"ratings"`
	Purchased      int       `json:"purchased" bson:"purchased"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Item struct {
	Title string `json:"title" bson:"title"`
}

// Section is one video of the course. Its id is the "contentId" used by the
// question endpoints.
type Section struct {
	ID           string     `json:"_id" bson:"_id"`
	Title        string     `json:"title" bson:"title"`
	Description  string     `json:"description" bson:"description"`
	VideoURL     string     `json:"videoUrl,omitempty" bson:"videoUrl"`
	VideoSection string     `json:"videoSection" bson:"videoSection"`
	VideoLength  int        `json:"videoLength" bson:"videoLength"`
	Questions    []Question `json:"questions,omitempty" bson:"questions"`
}

// Author identifies who wrote a question, answer, review or reply.
type Author struct {
	ID     string `json:"_id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

type Question struct {
	ID        string    `json:"_id" bson:"_id"`
	User      Author    `json:"user" bson:"user"`
	Question  string    `json:"question" bson:"question"`
	Replies   []Answer  `json:"questionReplies" bson:"questionReplies"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Answer struct {
	ID        string    `json:"_id" bson:"_id"`
	User      Author    `json:"user" bson:"user"`
	Answer    string    `json:"answer" bson:"answer"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Review struct {
	ID        string        `json:"_id" bson:"_id"`
	User      Author        `json:"user" bson:"user"`
	Rating    int           `json:"rating" bson:"rating"`
	Comment   string        `json:"comment" bson:"comment"`
	Replies   []ReviewReply `json:"commentReplies" bson:"commentReplies"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
}

type ReviewReply struct {
	ID        string    `json:"_id" bson:"_id"`
	User      Author    `json:"user" bson:"user"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Preview returns a copy without the section video URLs and questions, which
// only buyers may see.
func (c *Course) Preview() *Course {
	cp := *c
	cp.Sections = make([]Section, len(c.Sections))
	for i, s := range c.Sections {
		s.VideoURL = ""
		s.Questions = nil
		cp.Sections[i] = s
	}
	return &cp
}

// Section returns the section with the given id.
func (c *Course) Section(id string) (*Section, bool) {
	for i := range c.Sections {
		if c.Sections[i].ID == id {
			return &c.Sections[i], true
		}
	}
	return nil, false
}

// Question returns the question with the given id inside section sectionID.
func (c *Course) Question(sectionID, questionID string) (*Question, bool) {
	s, ok := c.Section(sectionID)
	if !ok {
		return nil, false
	}
	for i := range s.Questions {
		if s.Questions[i].ID == questionID {
			return &s.Questions[i], true
		}
	}
	return nil, false
}

func (c *Course) Review(id string) (*Review, bool) {
	for i := range c.Reviews {
		if c.Reviews[i].ID == id {
			return &c.Reviews[i], true
		}
	}
	return nil, false
}

// AverageRating is the mean of all review ratings, 0 without reviews.
func (c *Course) AverageRating() float64 {
	if len(c.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range c.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(c.Reviews))
}
